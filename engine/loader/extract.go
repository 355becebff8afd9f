package loader

import (
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/scene"
)

// extraction-wide state for notices that should only be logged once
type extractState struct {
	noticedExtraUVChannels    bool
	noticedExtraColorChannels bool
}

func (l *Loader) extract(sourceScene scene.Scene) mesh.MeshData {
	core.Assertf(sourceScene != nil, "extraction requires a scene")
	core.Assertf(sourceScene.Root() != nil, "extraction requires a scene with a root node")

	normalizeSceneRoot(sourceScene)

	out := mesh.MeshData{
		Materials: l.extractMaterials(sourceScene),
	}

	state := &extractState{}
	l.flattenNode(sourceScene, sourceScene.Root(), mesh.NoParent, &out, state)

	core.LogInfo("extracted %d nodes, %d sections, %d materials",
		len(out.Nodes), out.SectionCount(), len(out.Materials))
	return out
}

/**
 * @brief Bakes the coordinate-system and unit correction into the root
 * node's local transform. Sources are commonly Y-up with arbitrary linear
 * units; the target convention is Z-up centimeters. A point in root space is
 * first rotated 90 degrees about X, then scaled uniformly by the resolved
 * unit factor. Applying the correction once at the root propagates it to the
 * whole tree through ordinary transform composition.
 */
func normalizeSceneRoot(sourceScene scene.Scene) {
	unitScaleFactor := float32(1.0)
	if value, found := sourceScene.Metadata(scene.MetadataKeyUnitScaleFactor); found {
		unitScaleFactor = value
	} else {
		core.LogInfo("scene has no %s metadata, assuming 1.0", scene.MetadataKeyUnitScaleFactor)
	}

	correction := math.NewMat4EulerX(math.K_PI / 2.0).
		Mul(math.NewMat4Scale(math.NewVec3(unitScaleFactor, unitScaleFactor, unitScaleFactor)))

	root := sourceScene.Root()
	local := math.NewMat4FromRowMajor(root.Transformation())
	corrected := local.Mul(correction)

	// write back in the row-major layout the node interface speaks
	root.SetTransformation(math.NewMat4Transposed(corrected).Data)
}

/**
 * @brief Flattens the node tree into the output list with a pre-order walk.
 * Each node is appended before its children recurse, so a parent index
 * always refers to an earlier list entry and consumers can resolve parents
 * in a single forward pass.
 */
func (l *Loader) flattenNode(sourceScene scene.Scene, node scene.Node, parentIndex int, out *mesh.MeshData, state *extractState) {
	flattened := mesh.MeshNode{
		Name:              node.Name(),
		RelativeTransform: math.NewMat4FromRowMajor(node.Transformation()),
		ParentNodeIndex:   parentIndex,
	}
	for _, meshIndex := range node.MeshIndices() {
		flattened.Sections = append(flattened.Sections,
			l.buildSection(sourceScene.Mesh(meshIndex), state))
	}

	ownIndex := len(out.Nodes)
	out.Nodes = append(out.Nodes, flattened)

	for _, child := range node.Children() {
		l.flattenNode(sourceScene, child, ownIndex, out, state)
	}
}

/**
 * @brief Builds one geometry section from a source mesh. Every attribute is
 * optional and extracted independently: an absent attribute yields an empty
 * array and a log line, warning severity for positions and faces since
 * geometry without them is degenerate, informational for the cosmetic
 * attributes. Values are copied straight through; the basis correction
 * happened once at the root. Non-triangular faces violate a hard
 * precondition since downstream consumers assume a pure triangle list.
 */
func (l *Loader) buildSection(sourceMesh scene.Mesh, state *extractState) mesh.MeshSectionData {
	section := mesh.MeshSectionData{
		Vertices:      []math.Vec3{},
		Indices:       []uint32{},
		Normals:       []math.Vec3{},
		UV0:           []math.Vec2{},
		VertexColors:  []math.Vec4{},
		Tangents:      []math.Tangent{},
		MaterialIndex: sourceMesh.MaterialIndex(),
	}

	if sourceMesh.HasPositions() {
		section.Vertices = append(section.Vertices, sourceMesh.Positions()...)
	} else {
		core.LogWarn("source mesh has no vertex positions")
	}

	if sourceMesh.HasFaces() {
		for _, face := range sourceMesh.Faces() {
			core.Assertf(len(face) == 3,
				"face with %d indices after triangulation, only triangles are supported", len(face))
			section.Indices = append(section.Indices, face[0], face[1], face[2])
		}
	} else {
		core.LogWarn("source mesh has no faces")
	}

	if sourceMesh.HasNormals() {
		section.Normals = append(section.Normals, sourceMesh.Normals()...)
	} else {
		core.LogInfo("source mesh has no normals")
	}

	if sourceMesh.HasTextureCoords(0) {
		section.UV0 = append(section.UV0, sourceMesh.TextureCoords(0)...)
	} else {
		core.LogInfo("source mesh has no texture coordinates")
	}
	if sourceMesh.NumUVChannels() > 1 && !state.noticedExtraUVChannels {
		state.noticedExtraUVChannels = true
		core.LogInfo("source mesh has %d UV channels, only channel 0 is used", sourceMesh.NumUVChannels())
	}

	if sourceMesh.HasVertexColors(0) {
		section.VertexColors = append(section.VertexColors, sourceMesh.VertexColors(0)...)
	} else {
		core.LogInfo("source mesh has no vertex colors")
	}
	if sourceMesh.NumColorChannels() > 1 && !state.noticedExtraColorChannels {
		state.noticedExtraColorChannels = true
		core.LogInfo("source mesh has %d color channels, only channel 0 is used", sourceMesh.NumColorChannels())
	}

	if sourceMesh.HasTangents() {
		section.Tangents = append(section.Tangents, sourceMesh.Tangents()...)
	} else {
		core.LogInfo("source mesh has no tangents")
	}

	if l.simplifyRatio > 0.0 && l.simplifyRatio < 1.0 {
		simplifySection(&section, l.simplifyRatio)
	}

	return section
}
