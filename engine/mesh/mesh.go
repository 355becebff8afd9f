package mesh

import (
	"fmt"

	"github.com/spaghettifunk/forma/engine/math"
)

const (
	/** @brief Parent index of the root node. */
	NoParent int = -1
	/** @brief Material index of a section that has no material assigned. */
	NoMaterial int = -1
)

/** @brief The three states a converted material can be in. Exactly one
 * holds per material; a color and a texture payload never coexist. */
type MaterialInterface uint8

const (
	/** @brief No diffuse texture, the material is a flat color. */
	MaterialColorOnly MaterialInterface = iota
	/** @brief One diffuse texture whose payload was resolved and stored. */
	MaterialTextureOnly
	/** @brief One diffuse texture whose payload could not be resolved. */
	MaterialTextureFailed
)

func (mi MaterialInterface) String() string {
	switch mi {
	case MaterialColorOnly:
		return "ColorOnly"
	case MaterialTextureOnly:
		return "TextureOnly"
	case MaterialTextureFailed:
		return "TextureFailed"
	}
	return fmt.Sprintf("MaterialInterface(%d)", uint8(mi))
}

/**
 * @brief One converted material descriptor. Color is meaningful only in the
 * ColorOnly state and defaults to zero when the source color could not be
 * read. TexturePayload is meaningful only in the TextureOnly state and always
 * holds a compressed image container (png, webp, or the source's own blob
 * copied verbatim).
 */
type MaterialData struct {
	Interface      MaterialInterface
	Color          math.Vec4
	TexturePayload []byte
}

/**
 * @brief One drawable primitive group. The index list is a pure triangle
 * list with right-hand winding. Every non-empty per-vertex attribute array
 * has exactly one entry per vertex.
 */
type MeshSectionData struct {
	Vertices      []math.Vec3
	Indices       []uint32
	Normals       []math.Vec3
	UV0           []math.Vec2
	VertexColors  []math.Vec4
	Tangents      []math.Tangent
	MaterialIndex int
}

/**
 * @brief A named element of the flattened node tree. RelativeTransform is
 * local to the parent; ParentNodeIndex refers to an earlier entry of the
 * node list, or NoParent for the root at index 0.
 */
type MeshNode struct {
	Name              string
	RelativeTransform math.Mat4
	ParentNodeIndex   int
	Sections          []MeshSectionData
}

func (n *MeshNode) IsRoot() bool {
	return n.ParentNodeIndex == NoParent
}

/**
 * @brief MeshData is the portable result of extraction: a pre-order node
 * list plus the material list its sections index into. It is plain data,
 * detached from the source library and from any live engine object, and is
 * treated as immutable once produced.
 */
type MeshData struct {
	Nodes     []MeshNode
	Materials []MaterialData
}

// SectionCount returns the total number of sections across all nodes.
func (d *MeshData) SectionCount() int {
	count := 0
	for i := range d.Nodes {
		count += len(d.Nodes[i].Sections)
	}
	return count
}

/**
 * @brief Validate checks every structural invariant of the value: a
 * non-empty pre-order node list rooted at index 0, triangle-list sections
 * with consistent attribute lengths and valid indices, and single-state
 * materials. Returns the first violation found, nil when the value is sound.
 */
func (d *MeshData) Validate() error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("mesh data has no nodes")
	}
	if d.Nodes[0].ParentNodeIndex != NoParent {
		return fmt.Errorf("node 0 must be the root, got parent index %d", d.Nodes[0].ParentNodeIndex)
	}
	for i := 1; i < len(d.Nodes); i++ {
		parent := d.Nodes[i].ParentNodeIndex
		if parent < 0 || parent >= i {
			return fmt.Errorf("node %d (`%s`) has parent index %d, want a value in [0, %d)", i, d.Nodes[i].Name, parent, i)
		}
	}
	for i := range d.Nodes {
		for s := range d.Nodes[i].Sections {
			if err := d.validateSection(i, s); err != nil {
				return err
			}
		}
	}
	for i := range d.Materials {
		if err := validateMaterial(&d.Materials[i], i); err != nil {
			return err
		}
	}
	return nil
}

func (d *MeshData) validateSection(nodeIndex, sectionIndex int) error {
	section := &d.Nodes[nodeIndex].Sections[sectionIndex]
	where := fmt.Sprintf("node %d section %d", nodeIndex, sectionIndex)

	if len(section.Indices)%3 != 0 {
		return fmt.Errorf("%s: index count %d is not a multiple of 3", where, len(section.Indices))
	}
	vertexCount := len(section.Vertices)
	for _, index := range section.Indices {
		if int(index) >= vertexCount {
			return fmt.Errorf("%s: index %d out of range, vertex count %d", where, index, vertexCount)
		}
	}
	for name, length := range map[string]int{
		"normals":       len(section.Normals),
		"uv0":           len(section.UV0),
		"vertex colors": len(section.VertexColors),
		"tangents":      len(section.Tangents),
	} {
		if length != 0 && length != vertexCount {
			return fmt.Errorf("%s: %s length %d does not match vertex count %d", where, name, length, vertexCount)
		}
	}
	if section.MaterialIndex != NoMaterial &&
		(section.MaterialIndex < 0 || section.MaterialIndex >= len(d.Materials)) {
		return fmt.Errorf("%s: material index %d out of range, material count %d", where, section.MaterialIndex, len(d.Materials))
	}
	return nil
}

func validateMaterial(material *MaterialData, index int) error {
	switch material.Interface {
	case MaterialTextureOnly:
		if len(material.TexturePayload) == 0 {
			return fmt.Errorf("material %d is TextureOnly but carries no payload", index)
		}
	case MaterialColorOnly, MaterialTextureFailed:
		if len(material.TexturePayload) != 0 {
			return fmt.Errorf("material %d is %s but carries a texture payload", index, material.Interface)
		}
	default:
		return fmt.Errorf("material %d has unknown interface %d", index, material.Interface)
	}
	return nil
}
