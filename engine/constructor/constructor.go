package constructor

import (
	"fmt"

	"github.com/spaghettifunk/forma/engine/components"
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/systems"
)

// Material parameter names every base template must declare.
const (
	ParameterBaseColor             = "BaseColor4"
	ParameterBaseColorTexture      = "BaseColorTexture"
	ParameterTextureBlendIntensity = "TextureBlendIntensityForBaseColor"
)

/** @brief The parameter kinds a template can declare. */
type ParameterKind uint8

const (
	ParameterKindScalar ParameterKind = iota
	ParameterKindVector
	ParameterKindTexture
)

/** @brief configuration for the component tree constructor */
type Config struct {
	/** @brief Target live representation. Required. */
	Builder components.MeshBuilder
	/** @brief Texture system used to decode material payloads. Required. */
	Textures *systems.TextureSystem
}

/**
 * @brief Constructor materializes portable mesh data into live component
 * trees, either as a new sub-tree or merged into one existing target
 * component.
 */
type Constructor struct {
	builder  components.MeshBuilder
	textures *systems.TextureSystem
}

func New(config *Config) (*Constructor, error) {
	if config == nil {
		return nil, fmt.Errorf("constructor config is required")
	}
	if config.Builder == nil {
		return nil, fmt.Errorf("constructor requires a mesh builder")
	}
	if config.Textures == nil {
		return nil, fmt.Errorf("constructor requires a texture system")
	}
	return &Constructor{
		builder:  config.Builder,
		textures: config.Textures,
	}, nil
}

// NewBaseMaterialTemplate declares the three parameters every imported
// material drives.
func NewBaseMaterialTemplate(name string) *components.MaterialTemplate {
	return components.NewMaterialTemplate(name).
		DeclareVectorParameter(ParameterBaseColor, math.NewVec4One()).
		DeclareTextureParameter(ParameterBaseColorTexture, nil).
		DeclareScalarParameter(ParameterTextureBlendIntensity, 0.0)
}

/**
 * @brief VerifyMaterialParameter asserts that the template declares the
 * named parameter of the given kind. A missing expected parameter is a
 * violated template contract; silently skipping it would produce silently
 * wrong visuals.
 */
func VerifyMaterialParameter(template *components.MaterialTemplate, kind ParameterKind, name string) {
	found := false
	switch kind {
	case ParameterKindScalar:
		found = template.HasScalarParameter(name)
	case ParameterKindVector:
		found = template.HasVectorParameter(name)
	case ParameterKindTexture:
		found = template.HasTextureParameter(name)
	}
	core.Assertf(found, "material template %q is missing required parameter %q", template.Name(), name)
}

/**
 * @brief GenerateMaterialInstances stamps one live instance per material
 * descriptor from the base template, in list order. ColorOnly sets the
 * color and turns texture blending off; TextureOnly decodes the payload
 * into a live texture and turns blending fully on; TextureFailed leaves the
 * template defaults untouched.
 */
func (c *Constructor) GenerateMaterialInstances(template *components.MaterialTemplate, data *mesh.MeshData) []*components.MaterialInstance {
	core.Assertf(template != nil, "material instance generation requires a template")
	core.Assertf(data != nil, "material instance generation requires mesh data")

	instances := make([]*components.MaterialInstance, 0, len(data.Materials))
	for index := range data.Materials {
		material := &data.Materials[index]
		instance := template.Instantiate(fmt.Sprintf("%s_instance_%d", template.Name(), index))

		switch material.Interface {
		case mesh.MaterialColorOnly:
			VerifyMaterialParameter(template, ParameterKindVector, ParameterBaseColor)
			VerifyMaterialParameter(template, ParameterKindScalar, ParameterTextureBlendIntensity)
			instance.SetVectorParameterValue(ParameterBaseColor, material.Color)
			instance.SetScalarParameterValue(ParameterTextureBlendIntensity, 0.0)

		case mesh.MaterialTextureOnly:
			VerifyMaterialParameter(template, ParameterKindTexture, ParameterBaseColorTexture)
			VerifyMaterialParameter(template, ParameterKindScalar, ParameterTextureBlendIntensity)
			texture, err := components.NewTexture2DFromPayload(c.textures, material.TexturePayload)
			if err != nil {
				core.LogError("failed to decode texture of material %d, leaving template defaults: %s", index, err.Error())
				break
			}
			instance.SetTextureParameterValue(ParameterBaseColorTexture, texture)
			instance.SetScalarParameterValue(ParameterTextureBlendIntensity, 1.0)

		case mesh.MaterialTextureFailed:
			core.LogWarn("material %d failed to load its texture, leaving template defaults", index)
		}

		instances = append(instances, instance)
	}
	return instances
}

/**
 * @brief ConstructMeshComponentTree builds one live component per mesh
 * node, in list order so parents always exist before their children attach.
 * Local transforms come straight from the stored parent-relative transforms.
 *
 * With deferRegistration the tree is only linked via attachment and the
 * caller publishes it later with RegisterMeshComponentTree; otherwise every
 * component registers as it is built, root first. Must run on the owner
 * thread.
 */
func (c *Constructor) ConstructMeshComponentTree(owner *components.Actor, data *mesh.MeshData, template *components.MaterialTemplate, deferRegistration bool) *components.MeshComponent {
	core.Assertf(owner != nil, "construction requires an owning actor")
	core.Assertf(data != nil && len(data.Nodes) > 0, "construction requires mesh data with at least one node")

	instances := c.GenerateMaterialInstances(template, data)

	built := make([]*components.MeshComponent, len(data.Nodes))
	for index := range data.Nodes {
		node := &data.Nodes[index]

		component := c.builder.CreateNode(owner, node.Name)
		component.SetRelativeTransform(node.RelativeTransform)
		for s := range node.Sections {
			c.builder.CreateSection(component, liveSection(&node.Sections[s], instances))
		}
		c.builder.Finalize(component)
		built[index] = component

		if node.ParentNodeIndex != mesh.NoParent {
			component.AttachTo(built[node.ParentNodeIndex])
		}
		if !deferRegistration {
			component.Register()
		}
	}
	return built[0]
}

/**
 * @brief RegisterMeshComponentTree publishes a tree built with deferred
 * registration: the root first, then the children in pre-order. Must run on
 * the owner thread.
 */
func RegisterMeshComponentTree(root *components.MeshComponent) {
	core.Assertf(root != nil, "registration requires a root component")
	root.Register()
	for _, child := range root.Children() {
		RegisterMeshComponentTree(child)
	}
}

// liveSection copies a section's buffers into a live section and resolves
// its material instance. Mesh data stays immutable, live sections may not
// alias it.
func liveSection(section *mesh.MeshSectionData, instances []*components.MaterialInstance) *components.MeshSection {
	live := &components.MeshSection{
		Vertices:     append([]math.Vec3{}, section.Vertices...),
		Indices:      append([]uint32{}, section.Indices...),
		Normals:      append([]math.Vec3{}, section.Normals...),
		UV0:          append([]math.Vec2{}, section.UV0...),
		VertexColors: append([]math.Vec4{}, section.VertexColors...),
		Tangents:     append([]math.Tangent{}, section.Tangents...),
	}
	if section.MaterialIndex != mesh.NoMaterial && section.MaterialIndex < len(instances) {
		live.Material = instances[section.MaterialIndex]
	} else {
		core.LogDebug("section has no material assigned")
	}
	return live
}
