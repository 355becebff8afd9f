package mesh

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/forma/engine/math"
)

func validMeshData() MeshData {
	return MeshData{
		Nodes: []MeshNode{
			{
				Name:              "root",
				RelativeTransform: math.NewMat4Identity(),
				ParentNodeIndex:   NoParent,
			},
			{
				Name:              "child",
				RelativeTransform: math.NewMat4Translation(math.NewVec3(1, 0, 0)),
				ParentNodeIndex:   0,
				Sections: []MeshSectionData{
					{
						Vertices: []math.Vec3{
							math.NewVec3(0, 0, 0),
							math.NewVec3(1, 0, 0),
							math.NewVec3(0, 1, 0),
						},
						Indices:       []uint32{0, 1, 2},
						Normals:       []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
						MaterialIndex: 0,
					},
				},
			},
		},
		Materials: []MaterialData{
			{Interface: MaterialColorOnly, Color: math.NewVec4(1, 0, 0, 1)},
		},
	}
}

func TestValidateAcceptsSoundValue(t *testing.T) {
	data := validMeshData()
	assert.NoError(t, data.Validate())
}

func TestValidateRejectsEmptyNodeList(t *testing.T) {
	data := MeshData{}
	assert.Error(t, data.Validate())
}

func TestValidateRejectsNonRootFirstNode(t *testing.T) {
	data := validMeshData()
	data.Nodes[0].ParentNodeIndex = 0
	assert.Error(t, data.Validate())
}

func TestValidateRejectsForwardParentReference(t *testing.T) {
	data := validMeshData()
	data.Nodes[1].ParentNodeIndex = 1
	assert.Error(t, data.Validate())

	data.Nodes[1].ParentNodeIndex = 5
	assert.Error(t, data.Validate())
}

func TestValidateRejectsBrokenTriangleList(t *testing.T) {
	data := validMeshData()
	data.Nodes[1].Sections[0].Indices = []uint32{0, 1}
	assert.Error(t, data.Validate())
}

func TestValidateRejectsOutOfRangeIndex(t *testing.T) {
	data := validMeshData()
	data.Nodes[1].Sections[0].Indices = []uint32{0, 1, 9}
	assert.Error(t, data.Validate())
}

func TestValidateRejectsAttributeLengthMismatch(t *testing.T) {
	data := validMeshData()
	data.Nodes[1].Sections[0].Normals = []math.Vec3{{Z: 1}}
	assert.Error(t, data.Validate())
}

func TestValidateRejectsOutOfRangeMaterialIndex(t *testing.T) {
	data := validMeshData()
	data.Nodes[1].Sections[0].MaterialIndex = 3
	assert.Error(t, data.Validate())

	data.Nodes[1].Sections[0].MaterialIndex = NoMaterial
	assert.NoError(t, data.Validate())
}

func TestValidateRejectsMixedMaterialStates(t *testing.T) {
	data := validMeshData()
	data.Materials[0].TexturePayload = []byte{1, 2, 3}
	assert.Error(t, data.Validate())

	data.Materials[0] = MaterialData{Interface: MaterialTextureOnly}
	assert.Error(t, data.Validate())

	data.Materials[0] = MaterialData{Interface: MaterialTextureFailed}
	assert.NoError(t, data.Validate())
}

func TestCodecRoundTrip(t *testing.T) {
	data := validMeshData()
	data.Materials = append(data.Materials, MaterialData{
		Interface:      MaterialTextureOnly,
		TexturePayload: []byte{0x89, 0x50, 0x4e, 0x47},
	})

	buffer := &bytes.Buffer{}
	require.NoError(t, data.Encode(buffer))

	decoded := MeshData{}
	require.NoError(t, decoded.Decode(buffer))

	assert.Equal(t, data, decoded)
	assert.NoError(t, decoded.Validate())
}

func TestSaveAndLoadFile(t *testing.T) {
	data := validMeshData()
	path := t.TempDir() + "/cached.meshdata"

	require.NoError(t, data.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestSectionCount(t *testing.T) {
	data := validMeshData()
	assert.Equal(t, 1, data.SectionCount())
}
