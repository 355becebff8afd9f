package scene

import (
	"fmt"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
)

/**
 * @brief MemoryScene is a Scene built directly from Go values instead of a
 * source asset file. It is used for programmatically generated content and
 * throughout the test suite, where it can also simulate lookup failures at
 * the source library boundary.
 */
type MemoryScene struct {
	RootNode  *MemoryNode
	Meshes    []*MemoryMesh
	Materials []*MemoryMaterial
	Embedded  map[string]*EmbeddedTexture
	Meta      map[string]float32
}

func (s *MemoryScene) Root() Node          { return s.RootNode }
func (s *MemoryScene) MaterialCount() int  { return len(s.Materials) }
func (s *MemoryScene) MeshCount() int      { return len(s.Meshes) }
func (s *MemoryScene) Mesh(index int) Mesh { return s.Meshes[index] }

func (s *MemoryScene) Material(index int) Material {
	return s.Materials[index]
}

func (s *MemoryScene) Metadata(key string) (float32, bool) {
	value, found := s.Meta[key]
	return value, found
}

func (s *MemoryScene) EmbeddedTexture(path string) (*EmbeddedTexture, error) {
	if texture, found := s.Embedded[path]; found {
		return texture, nil
	}
	return nil, fmt.Errorf("texture %q: %w", path, core.ErrTextureNotEmbedded)
}

func (s *MemoryScene) Release() {
	s.RootNode = nil
	s.Meshes = nil
	s.Materials = nil
	s.Embedded = nil
	s.Meta = nil
}

/** @brief MemoryNode carries its transform in the row-major 4-row layout,
 * the same layout file backed nodes report. */
type MemoryNode struct {
	NodeName  string
	Transform [16]float32
	Meshes    []int
	Kids      []*MemoryNode
}

func (n *MemoryNode) Name() string                { return n.NodeName }
func (n *MemoryNode) Transformation() [16]float32 { return n.Transform }
func (n *MemoryNode) MeshIndices() []int          { return n.Meshes }

func (n *MemoryNode) SetTransformation(elements [16]float32) {
	n.Transform = elements
}

func (n *MemoryNode) Children() []Node {
	children := make([]Node, len(n.Kids))
	for i, child := range n.Kids {
		children[i] = child
	}
	return children
}

type MemoryMesh struct {
	PositionData []math.Vec3
	FaceData     [][]uint32
	NormalData   []math.Vec3
	UVData       [][]math.Vec2
	ColorData    [][]math.Vec4
	TangentData  []math.Tangent
	MatIndex     int
}

func (m *MemoryMesh) HasPositions() bool       { return len(m.PositionData) > 0 }
func (m *MemoryMesh) Positions() []math.Vec3   { return m.PositionData }
func (m *MemoryMesh) HasFaces() bool           { return len(m.FaceData) > 0 }
func (m *MemoryMesh) Faces() [][]uint32        { return m.FaceData }
func (m *MemoryMesh) HasNormals() bool         { return len(m.NormalData) > 0 }
func (m *MemoryMesh) Normals() []math.Vec3     { return m.NormalData }
func (m *MemoryMesh) NumUVChannels() int       { return len(m.UVData) }
func (m *MemoryMesh) NumColorChannels() int    { return len(m.ColorData) }
func (m *MemoryMesh) HasTangents() bool        { return len(m.TangentData) > 0 }
func (m *MemoryMesh) Tangents() []math.Tangent { return m.TangentData }
func (m *MemoryMesh) MaterialIndex() int       { return m.MatIndex }

func (m *MemoryMesh) HasTextureCoords(channel int) bool {
	return channel < len(m.UVData) && len(m.UVData[channel]) > 0
}

func (m *MemoryMesh) TextureCoords(channel int) []math.Vec2 {
	if channel >= len(m.UVData) {
		return nil
	}
	return m.UVData[channel]
}

func (m *MemoryMesh) HasVertexColors(channel int) bool {
	return channel < len(m.ColorData) && len(m.ColorData[channel]) > 0
}

func (m *MemoryMesh) VertexColors(channel int) []math.Vec4 {
	if channel >= len(m.ColorData) {
		return nil
	}
	return m.ColorData[channel]
}

/**
 * @brief MemoryMaterial answers the diffuse slot queries from plain fields.
 * ColorErr and PathErr, when set, are returned instead of the values so
 * tests can drive the failure paths of the material extractor.
 */
type MemoryMaterial struct {
	MaterialName string
	TextureCount int
	Color        math.Vec4
	ColorErr     error
	TexturePath  string
	PathErr      error
}

func (m *MemoryMaterial) Name() string             { return m.MaterialName }
func (m *MemoryMaterial) DiffuseTextureCount() int { return m.TextureCount }

func (m *MemoryMaterial) DiffuseColor() (math.Vec4, error) {
	if m.ColorErr != nil {
		return math.Vec4{}, m.ColorErr
	}
	return m.Color, nil
}

func (m *MemoryMaterial) DiffuseTexturePath(index int) (string, error) {
	if m.PathErr != nil {
		return "", m.PathErr
	}
	if index >= m.TextureCount {
		return "", fmt.Errorf("material %q has no diffuse texture slot %d", m.MaterialName, index)
	}
	return m.TexturePath, nil
}
