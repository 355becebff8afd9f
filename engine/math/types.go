package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 *
 * The convention fixed for the whole system: the translation lives in
 * Data[12], Data[13], Data[14], vectors are treated as rows (v' = v * M) and
 * transforms compose left-to-right, so the absolute matrix of a node is
 * Local.Mul(ParentAbsolute). Source libraries that report row-major 4-row
 * layouts are transposed once at the import boundary.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief A tangent direction plus the sign used to reconstruct the
 * bitangent. FlipSign is -1 when the UV winding is mirrored, +1 otherwise.
 */
type Tangent struct {
	Direction Vec3
	FlipSign  float32
}

/**
 * @brief Represents a single vertex in 3D space. Used by the geometry
 * helpers (normal/tangent generation, deduplication); the portable mesh
 * value keeps separate per-attribute arrays instead.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The normal of the vertex. */
	Normal Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
	/** @brief The colour of the vertex. */
	Colour Vec4
	/** @brief The tangent of the vertex. */
	Tangent Vec3
}
