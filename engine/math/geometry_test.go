package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func quadVertices() ([]Vertex3D, []uint32) {
	vertices := []Vertex3D{
		{Position: NewVec3(0, 0, 0), Texcoord: NewVec2(0, 0)},
		{Position: NewVec3(1, 0, 0), Texcoord: NewVec2(1, 0)},
		{Position: NewVec3(1, 1, 0), Texcoord: NewVec2(1, 1)},
		{Position: NewVec3(0, 1, 0), Texcoord: NewVec2(0, 1)},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return vertices, indices
}

func TestGenerateSmoothNormalsOnFlatQuad(t *testing.T) {
	vertices, indices := quadVertices()
	GeometryGenerateSmoothNormals(vertices, indices)

	for i, vertex := range vertices {
		assert.True(t, vertex.Normal.Compare(NewVec3(0, 0, 1), 1e-5),
			"vertex %d normal %+v", i, vertex.Normal)
	}
}

func TestGenerateTangentsFollowUDirection(t *testing.T) {
	vertices, indices := quadVertices()
	tangents := GeometryGenerateTangents(vertices, indices)

	assert.Len(t, tangents, len(vertices))
	for i, tangent := range tangents {
		assert.True(t, tangent.Direction.Compare(NewVec3(1, 0, 0), 1e-5),
			"tangent %d direction %+v", i, tangent.Direction)
		assert.Equal(t, float32(1.0), tangent.FlipSign)
	}
}

func TestGenerateTangentsFlagMirroredUVs(t *testing.T) {
	vertices, indices := quadVertices()
	// mirror the U axis: the bitangent flips, the flip bit must say so
	for i := range vertices {
		vertices[i].Texcoord.X = 1.0 - vertices[i].Texcoord.X
	}

	tangents := GeometryGenerateTangents(vertices, indices)

	for i, tangent := range tangents {
		assert.True(t, tangent.Direction.Compare(NewVec3(-1, 0, 0), 1e-5),
			"tangent %d direction %+v", i, tangent.Direction)
		assert.Equal(t, float32(-1.0), tangent.FlipSign)
	}
}

func TestDeduplicateVertices(t *testing.T) {
	vertices := []Vertex3D{
		{Position: NewVec3(0, 0, 0)},
		{Position: NewVec3(1, 0, 0)},
		{Position: NewVec3(0, 0, 0)}, // duplicate of 0
		{Position: NewVec3(1, 0, 0)}, // duplicate of 1
	}
	indices := []uint32{0, 1, 2, 1, 2, 3}

	unique, removed := GeometryDeduplicateVertices(vertices, indices)

	assert.Equal(t, 2, removed)
	assert.Len(t, unique, 2)
	assert.Equal(t, []uint32{0, 1, 0, 1, 0, 1}, indices)
}

func TestDeduplicateKeepsDistinctAttributes(t *testing.T) {
	// same position but different texcoord must not be joined
	vertices := []Vertex3D{
		{Position: NewVec3(0, 0, 0), Texcoord: NewVec2(0, 0)},
		{Position: NewVec3(0, 0, 0), Texcoord: NewVec2(1, 0)},
	}
	indices := []uint32{0, 1, 0}

	unique, removed := GeometryDeduplicateVertices(vertices, indices)
	assert.Equal(t, 0, removed)
	assert.Len(t, unique, 2)
}
