package loader

import (
	"github.com/fogleman/simplify"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
)

/**
 * @brief Decimates a section to roughly ratio times its triangle count
 * using quadric edge collapse. Only positions survive decimation; the
 * cosmetic attributes are dropped because the surviving vertices no longer
 * correspond to source vertices. Sections too small to decimate are left
 * untouched.
 */
func simplifySection(section *mesh.MeshSectionData, ratio float32) {
	triangleCount := len(section.Indices) / 3
	if triangleCount < 2 || len(section.Vertices) == 0 {
		return
	}

	triangles := make([]*simplify.Triangle, 0, triangleCount)
	for i := 0; i+2 < len(section.Indices); i += 3 {
		v1 := toSimplifyVector(section.Vertices[section.Indices[i+0]])
		v2 := toSimplifyVector(section.Vertices[section.Indices[i+1]])
		v3 := toSimplifyVector(section.Vertices[section.Indices[i+2]])
		triangles = append(triangles, simplify.NewTriangle(v1, v2, v3))
	}

	simplified := simplify.NewMesh(triangles).Simplify(float64(ratio))

	vertices := make([]math.Vec3, 0, len(simplified.Triangles)*3)
	indices := make([]uint32, 0, len(simplified.Triangles)*3)
	lookup := map[simplify.Vector]uint32{}
	for _, triangle := range simplified.Triangles {
		for _, vector := range []simplify.Vector{triangle.V1, triangle.V2, triangle.V3} {
			index, found := lookup[vector]
			if !found {
				index = uint32(len(vertices))
				lookup[vector] = index
				vertices = append(vertices, math.NewVec3(
					float32(vector.X), float32(vector.Y), float32(vector.Z)))
			}
			indices = append(indices, index)
		}
	}

	hadAttributes := len(section.Normals) > 0 || len(section.UV0) > 0 ||
		len(section.VertexColors) > 0 || len(section.Tangents) > 0
	if hadAttributes {
		core.LogWarn("section decimation %d -> %d triangles drops per-vertex attributes",
			triangleCount, len(simplified.Triangles))
	} else {
		core.LogDebug("section decimation %d -> %d triangles", triangleCount, len(simplified.Triangles))
	}

	section.Vertices = vertices
	section.Indices = indices
	section.Normals = []math.Vec3{}
	section.UV0 = []math.Vec2{}
	section.VertexColors = []math.Vec4{}
	section.Tangents = []math.Tangent{}
}

func toSimplifyVector(v math.Vec3) simplify.Vector {
	return simplify.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
