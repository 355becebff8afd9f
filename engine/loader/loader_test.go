package loader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/scene"
	"github.com/spaghettifunk/forma/engine/systems"
)

const tolerance = 1e-5

func testLoader(t *testing.T) *Loader {
	t.Helper()
	textures, err := systems.NewTextureSystem(&systems.TextureSystemConfig{
		MaxTextureDimension: 4096,
		Container:           systems.TextureContainerPNG,
	})
	require.NoError(t, err)

	l, err := New(&Config{Textures: textures})
	require.NoError(t, err)
	return l
}

func testLoaderWithRatio(t *testing.T, ratio float32) *Loader {
	t.Helper()
	textures, err := systems.NewTextureSystem(&systems.TextureSystemConfig{
		MaxTextureDimension: 4096,
		Container:           systems.TextureContainerPNG,
	})
	require.NoError(t, err)

	l, err := New(&Config{Textures: textures, SimplifyRatio: ratio})
	require.NoError(t, err)
	return l
}

func rowMajorIdentity() [16]float32 {
	return math.NewMat4Identity().Data
}

// row-major layout keeps the translation in elements 3, 7 and 11
func rowMajorTranslation(x, y, z float32) [16]float32 {
	return math.NewMat4Transposed(math.NewMat4Translation(math.NewVec3(x, y, z))).Data
}

func triangleMesh(materialIndex int) *scene.MemoryMesh {
	return &scene.MemoryMesh{
		PositionData: []math.Vec3{
			math.NewVec3(0, 0, 0),
			math.NewVec3(1, 0, 0),
			math.NewVec3(0, 1, 0),
		},
		FaceData:   [][]uint32{{0, 1, 2}},
		NormalData: []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
		UVData:     [][]math.Vec2{{{}, {X: 1}, {Y: 1}}},
		MatIndex:   materialIndex,
	}
}

// root -> body -> arm, plus a second child under root
func testScene() *scene.MemoryScene {
	return &scene.MemoryScene{
		RootNode: &scene.MemoryNode{
			NodeName:  "root",
			Transform: rowMajorIdentity(),
			Kids: []*scene.MemoryNode{
				{
					NodeName:  "body",
					Transform: rowMajorTranslation(1, 0, 0),
					Meshes:    []int{0},
					Kids: []*scene.MemoryNode{
						{
							NodeName:  "arm",
							Transform: rowMajorTranslation(0, 1, 0),
							Meshes:    []int{1},
						},
					},
				},
				{
					NodeName:  "head",
					Transform: rowMajorTranslation(0, 0, 2),
				},
			},
		},
		Meshes: []*scene.MemoryMesh{
			triangleMesh(0),
			triangleMesh(1),
		},
		Materials: []*scene.MemoryMaterial{
			{MaterialName: "red", Color: math.NewVec4(1, 0, 0, 1)},
			{MaterialName: "green", Color: math.NewVec4(0, 1, 0, 1)},
		},
	}
}

func TestExtractProducesPreOrderNodeList(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(testScene())

	require.NoError(t, data.Validate())
	require.Len(t, data.Nodes, 4)

	assert.Equal(t, "root", data.Nodes[0].Name)
	assert.Equal(t, mesh.NoParent, data.Nodes[0].ParentNodeIndex)
	assert.Equal(t, "body", data.Nodes[1].Name)
	assert.Equal(t, 0, data.Nodes[1].ParentNodeIndex)
	assert.Equal(t, "arm", data.Nodes[2].Name)
	assert.Equal(t, 1, data.Nodes[2].ParentNodeIndex)
	assert.Equal(t, "head", data.Nodes[3].Name)
	assert.Equal(t, 0, data.Nodes[3].ParentNodeIndex)

	for i := 1; i < len(data.Nodes); i++ {
		assert.Less(t, data.Nodes[i].ParentNodeIndex, i)
	}
}

func TestExtractCopiesSectionsAndMaterialIndices(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(testScene())

	require.Len(t, data.Nodes[1].Sections, 1)
	section := data.Nodes[1].Sections[0]
	assert.Len(t, section.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, section.Indices)
	assert.Len(t, section.Normals, 3)
	assert.Len(t, section.UV0, 3)
	assert.Empty(t, section.VertexColors)
	assert.Empty(t, section.Tangents)
	assert.Equal(t, 0, section.MaterialIndex)

	assert.Equal(t, 1, data.Nodes[2].Sections[0].MaterialIndex)
}

func TestExtractNodeWithTwoSectionsKeepsMaterialIndices(t *testing.T) {
	s := testScene()
	s.RootNode.Kids[0].Meshes = []int{0, 1}

	l := testLoader(t)
	data := l.LoadMeshFromScene(s)

	require.Len(t, data.Nodes[1].Sections, 2)
	assert.Equal(t, 0, data.Nodes[1].Sections[0].MaterialIndex)
	assert.Equal(t, 1, data.Nodes[1].Sections[1].MaterialIndex)
}

func TestNormalizerBakesUnitScaleAndRotationIntoRoot(t *testing.T) {
	s := testScene()
	s.Meta = map[string]float32{scene.MetadataKeyUnitScaleFactor: 2.5}

	l := testLoader(t)
	data := l.LoadMeshFromScene(s)

	// the original root transform was identity, so the root now carries
	// exactly the correction: rotate 90 degrees about X, then scale by 2.5
	correction := data.Nodes[0].RelativeTransform
	out := math.NewVec3(1, 2, 3).Transform(correction)
	assert.True(t, out.Compare(math.NewVec3(2.5, -7.5, 5.0), tolerance), "got %+v", out)
}

func TestNormalizerDefaultsToUnitScaleOne(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(testScene())

	correction := data.Nodes[0].RelativeTransform
	out := math.NewVec3(0, 1, 0).Transform(correction)
	assert.True(t, out.Compare(math.NewVec3(0, 0, 1), tolerance), "got %+v", out)
}

func TestChildAbsoluteTransformComposesThroughNormalizedRoot(t *testing.T) {
	s := testScene()
	s.Meta = map[string]float32{scene.MetadataKeyUnitScaleFactor: 2.5}

	l := testLoader(t)
	data := l.LoadMeshFromScene(s)

	body := data.Nodes[1]
	absolute := body.RelativeTransform.Mul(data.Nodes[0].RelativeTransform)

	// body sits at (1,0,0) in source space: rotated it stays on X, scaled
	// it lands at (2.5,0,0)
	assert.True(t, absolute.Translation().Compare(math.NewVec3(2.5, 0, 0), tolerance),
		"got %+v", absolute.Translation())
}

func TestExtractionIsIdempotent(t *testing.T) {
	l := testLoader(t)
	first := l.LoadMeshFromScene(testScene())
	second := l.LoadMeshFromScene(testScene())

	assert.Equal(t, first, second)
}

func TestExtractToleratesMissingAttributes(t *testing.T) {
	s := testScene()
	s.Meshes[0] = &scene.MemoryMesh{MatIndex: 0}

	l := testLoader(t)
	data := l.LoadMeshFromScene(s)

	section := data.Nodes[1].Sections[0]
	assert.Empty(t, section.Vertices)
	assert.Empty(t, section.Indices)
	assert.Empty(t, section.Normals)
	assert.Empty(t, section.UV0)
	assert.Empty(t, section.VertexColors)
	assert.Empty(t, section.Tangents)
}

func TestExtractPanicsOnNonTriangularFace(t *testing.T) {
	s := testScene()
	s.Meshes[0].FaceData = [][]uint32{{0, 1, 2, 2}}

	l := testLoader(t)
	assert.Panics(t, func() { l.LoadMeshFromScene(s) })
}

func TestLoadFromMissingFileIsTypedFailure(t *testing.T) {
	l := testLoader(t)

	data, result := l.LoadMeshFromAssetFile("does-not-exist.glb")
	assert.Equal(t, LoadResultFailure, result)
	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Materials)
}

func TestLoadUnsupportedFormatIsTypedFailure(t *testing.T) {
	l := testLoader(t)

	data, result := l.LoadMeshFromAssetFile("model.fbx")
	assert.Equal(t, LoadResultFailure, result)
	assert.Empty(t, data.Nodes)
}

func TestLoadFromGarbageBufferIsTypedFailure(t *testing.T) {
	l := testLoader(t)

	data, result := l.LoadMeshFromAssetData(bytes.Repeat([]byte{0xff}, 64))
	assert.Equal(t, LoadResultFailure, result)
	assert.Empty(t, data.Nodes)
}
