package components

/**
 * @brief MeshBuilder abstracts over the live representations a component
 * tree can be built into. MeshData stays representation agnostic; one small
 * builder per target form supplies create-node, create-section and finalize,
 * and the caller picks the form. Requesting an unsupported form is a
 * configuration error at construction setup, never a runtime branch.
 */
type MeshBuilder interface {
	Kind() string
	CreateNode(owner *Actor, name string) *MeshComponent
	CreateSection(component *MeshComponent, section *MeshSection)
	Finalize(component *MeshComponent)
}

/** @brief Procedural components stay fully mutable after construction. */
type ProceduralMeshBuilder struct{}

func (ProceduralMeshBuilder) Kind() string { return "procedural" }

func (ProceduralMeshBuilder) CreateNode(owner *Actor, name string) *MeshComponent {
	return NewMeshComponent(owner, name)
}

func (ProceduralMeshBuilder) CreateSection(component *MeshComponent, section *MeshSection) {
	component.CreateMeshSection(section)
}

func (ProceduralMeshBuilder) Finalize(component *MeshComponent) {}

/** @brief Static components are baked once construction finishes; their
 * sections can never change afterwards. */
type StaticMeshBuilder struct{}

func (StaticMeshBuilder) Kind() string { return "static" }

func (StaticMeshBuilder) CreateNode(owner *Actor, name string) *MeshComponent {
	return NewMeshComponent(owner, name)
}

func (StaticMeshBuilder) CreateSection(component *MeshComponent, section *MeshSection) {
	component.CreateMeshSection(section)
}

func (StaticMeshBuilder) Finalize(component *MeshComponent) {
	component.baked = true
}

/** @brief Dynamic components keep their sections updatable in place. */
type DynamicMeshBuilder struct{}

func (DynamicMeshBuilder) Kind() string { return "dynamic" }

func (DynamicMeshBuilder) CreateNode(owner *Actor, name string) *MeshComponent {
	return NewMeshComponent(owner, name)
}

func (DynamicMeshBuilder) CreateSection(component *MeshComponent, section *MeshSection) {
	component.CreateMeshSection(section)
}

func (DynamicMeshBuilder) Finalize(component *MeshComponent) {}
