package constructor

import (
	"github.com/spaghettifunk/forma/engine/components"
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
)

/**
 * @brief MergeMeshDataIntoComponent appends every section of the mesh data
 * onto one pre-existing target component instead of spawning a sub-tree.
 * Each node's absolute transform is composed top-down from the stored
 * parent-relative transforms, the root's parent being identity, and every
 * section is re-expressed in target-local space before it is appended.
 * Positions take the full transform, normals and tangents only its
 * rotation. This is the reference semantics; the task-graph variant in
 * merge_task.go produces the identical result. Must run on the owner
 * thread.
 */
func (c *Constructor) MergeMeshDataIntoComponent(target *components.MeshComponent, data *mesh.MeshData, template *components.MaterialTemplate) {
	core.Assertf(target != nil, "merge requires a target component")
	core.Assertf(data != nil && len(data.Nodes) > 0, "merge requires mesh data with at least one node")

	instances := c.GenerateMaterialInstances(template, data)
	absolutes := composeAbsoluteTransforms(data)

	for index := range data.Nodes {
		node := &data.Nodes[index]
		for s := range node.Sections {
			section := liveSection(&node.Sections[s], instances)
			transformSectionInPlace(section, absolutes[index])
			c.builder.CreateSection(target, section)
		}
	}
	c.builder.Finalize(target)
}

// composeAbsoluteTransforms resolves every node's transform relative to the
// tree origin with a single forward pass over the pre-order node list.
func composeAbsoluteTransforms(data *mesh.MeshData) []math.Mat4 {
	absolutes := make([]math.Mat4, len(data.Nodes))
	for index := range data.Nodes {
		node := &data.Nodes[index]
		if node.ParentNodeIndex == mesh.NoParent {
			absolutes[index] = node.RelativeTransform
			continue
		}
		absolutes[index] = node.RelativeTransform.Mul(absolutes[node.ParentNodeIndex])
	}
	return absolutes
}

func transformSectionInPlace(section *components.MeshSection, transform math.Mat4) {
	transformSectionVertices(section, transform)
	transformSectionDirections(section, transform)
}

func transformSectionVertices(section *components.MeshSection, transform math.Mat4) {
	for i := range section.Vertices {
		section.Vertices[i] = section.Vertices[i].Transform(transform)
	}
}

func transformSectionDirections(section *components.MeshSection, transform math.Mat4) {
	for i := range section.Normals {
		section.Normals[i] = section.Normals[i].TransformDirection(transform)
	}
	for i := range section.Tangents {
		section.Tangents[i].Direction = section.Tangents[i].Direction.TransformDirection(transform)
	}
}
