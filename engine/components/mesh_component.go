package components

import (
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
)

/**
 * @brief MeshSection is one live drawable primitive group on a component:
 * triangle-list geometry buffers plus the material instance rendering it.
 */
type MeshSection struct {
	Vertices     []math.Vec3
	Indices      []uint32
	Normals      []math.Vec3
	UV0          []math.Vec2
	VertexColors []math.Vec4
	Tangents     []math.Tangent
	Material     *MaterialInstance
}

/**
 * @brief MeshComponent is a live transform-bearing node of an actor's
 * component tree. Attachment and registration are separate phases: AttachTo
 * links the tree while it is still off-scene, Register publishes a
 * component to its owner. Building a whole sub-tree before registering it
 * avoids partially visible trees during construction.
 */
type MeshComponent struct {
	id    string
	name  string
	owner *Actor

	relativeTransform math.Mat4
	parent            *MeshComponent
	children          []*MeshComponent
	sections          []*MeshSection

	registered bool
	baked      bool
}

func NewMeshComponent(owner *Actor, name string) *MeshComponent {
	core.Assertf(owner != nil, "mesh component %q requires an owning actor", name)
	return &MeshComponent{
		id:                core.IdentifierAcquireNew(),
		name:              name,
		owner:             owner,
		relativeTransform: math.NewMat4Identity(),
	}
}

func (c *MeshComponent) ID() string                 { return c.id }
func (c *MeshComponent) Name() string               { return c.name }
func (c *MeshComponent) Owner() *Actor              { return c.owner }
func (c *MeshComponent) Parent() *MeshComponent     { return c.parent }
func (c *MeshComponent) Children() []*MeshComponent { return c.children }
func (c *MeshComponent) Sections() []*MeshSection   { return c.sections }
func (c *MeshComponent) IsRegistered() bool         { return c.registered }

func (c *MeshComponent) SetRelativeTransform(transform math.Mat4) {
	c.relativeTransform = transform
}

func (c *MeshComponent) RelativeTransform() math.Mat4 {
	return c.relativeTransform
}

// ComponentToWorld composes the absolute transform through the attachment
// chain.
func (c *MeshComponent) ComponentToWorld() math.Mat4 {
	if c.parent == nil {
		return c.relativeTransform
	}
	return c.relativeTransform.Mul(c.parent.ComponentToWorld())
}

/**
 * @brief AttachTo links this component under parent without touching the
 * live scene. Both components must belong to the same actor.
 */
func (c *MeshComponent) AttachTo(parent *MeshComponent) {
	core.Assertf(parent != nil, "component %q cannot attach to a nil parent", c.name)
	core.Assertf(parent != c, "component %q cannot attach to itself", c.name)
	core.Assertf(parent.owner == c.owner, "component %q cannot attach across actors", c.name)

	c.parent = parent
	parent.children = append(parent.children, c)
}

/**
 * @brief Register publishes the component to its owner's scene. Must run on
 * the owner thread.
 */
func (c *MeshComponent) Register() {
	if c.registered {
		core.LogWarn("component `%s` is already registered", c.name)
		return
	}
	c.registered = true
	c.owner.addRegistered(c)
}

func (c *MeshComponent) CreateMeshSection(section *MeshSection) {
	core.Assertf(section != nil, "component %q cannot create a nil section", c.name)
	core.Assertf(!c.baked, "component %q is baked, sections can no longer be added", c.name)
	c.sections = append(c.sections, section)
}

func (c *MeshComponent) UpdateMeshSection(index int, section *MeshSection) {
	core.Assertf(section != nil, "component %q cannot update to a nil section", c.name)
	core.Assertf(!c.baked, "component %q is baked, sections can no longer change", c.name)
	core.Assertf(index >= 0 && index < len(c.sections),
		"component %q has no section %d", c.name, index)
	c.sections[index] = section
}
