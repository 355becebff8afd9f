package math

/**
 * @brief Generates smooth vertex normals by accumulating the face normal of
 * every triangle a vertex participates in, then normalizing. The cross
 * product of the triangle edges is area-weighted, so large faces dominate.
 */
func GeometryGenerateSmoothNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		faceNormal := edge1.Cross(edge2)

		vertices[i0].Normal = vertices[i0].Normal.Add(faceNormal)
		vertices[i1].Normal = vertices[i1].Normal.Add(faceNormal)
		vertices[i2].Normal = vertices[i2].Normal.Add(faceNormal)
	}

	for i := range vertices {
		vertices[i].Normal = vertices[i].Normal.Normalized()
	}
}

/**
 * @brief Generates per-vertex tangents from positions and texture
 * coordinates. Triangles with degenerate UVs are skipped.
 */
func GeometryGenerateTangents(vertices []Vertex3D, indices []uint32) []Tangent {
	tangents := make([]Tangent, len(vertices))
	for i := range tangents {
		tangents[i].FlipSign = 1.0
	}

	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y

		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			continue
		}
		fc := 1.0 / dividend

		tangent := Vec3{
			fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			fc * (deltaV2*edge1.Z - deltaV1*edge2.Z)}
		tangent = tangent.Normalized()

		// mirrored UVs flip the bitangent, signalled by a negative determinant
		handedness := float32(1.0)
		if dividend < 0.0 {
			handedness = -1.0
		}

		for _, index := range []uint32{i0, i1, i2} {
			tangents[index].Direction = tangent
			tangents[index].FlipSign = handedness
		}
	}

	return tangents
}

/**
 * @brief Removes exactly-equal duplicate vertices and rewrites the index
 * list in place to point at the surviving vertex. Returns the deduplicated
 * vertex slice and the number of removed vertices.
 */
func GeometryDeduplicateVertices(vertices []Vertex3D, indices []uint32) ([]Vertex3D, int) {
	uniqueVerts := make([]Vertex3D, 0, len(vertices))
	remap := make([]uint32, len(vertices))
	seen := make(map[Vertex3D]uint32, len(vertices))

	for v := range vertices {
		if u, found := seen[vertices[v]]; found {
			remap[v] = u
			continue
		}
		newIndex := uint32(len(uniqueVerts))
		seen[vertices[v]] = newIndex
		remap[v] = newIndex
		uniqueVerts = append(uniqueVerts, vertices[v])
	}

	for i := range indices {
		indices[i] = remap[indices[i]]
	}

	return uniqueVerts, len(vertices) - len(uniqueVerts)
}
