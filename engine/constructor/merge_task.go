package constructor

import (
	"sync/atomic"

	"github.com/spaghettifunk/forma/engine/components"
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/systems"
)

/**
 * @brief MergeOperation tracks one in-flight asynchronous merge. The owner
 * polls IsRunning once per frame, pumping the actor's tasks, until the
 * operation reports done. There is no cancellation; a launched graph runs
 * to completion.
 */
type MergeOperation struct {
	running int32
}

func (op *MergeOperation) IsRunning() bool {
	return atomic.LoadInt32(&op.running) == 1
}

func (op *MergeOperation) finish() {
	atomic.StoreInt32(&op.running, 0)
}

/**
 * @brief MergeMeshDataIntoComponentAsync is the task-graph form of the
 * merge. Each node's transform-composition task depends only on its
 * parent's task, so the dependency graph mirrors the parent relation of the
 * node list and no shared transform is ever read before it was written.
 * Per section, a vertex task (full transform) and a direction task
 * (rotation only) hang off the node task. A final join task waits for all
 * of them and dispatches section creation to the target's owner, which is
 * the only place live objects are touched.
 *
 * The result is identical to MergeMeshDataIntoComponent; only the
 * scheduling differs.
 */
func (c *Constructor) MergeMeshDataIntoComponentAsync(jobs *systems.JobSystem, target *components.MeshComponent, data *mesh.MeshData, template *components.MaterialTemplate) *MergeOperation {
	core.Assertf(jobs != nil, "async merge requires a job system")
	core.Assertf(target != nil, "merge requires a target component")
	core.Assertf(data != nil && len(data.Nodes) > 0, "merge requires mesh data with at least one node")

	// Material instances are built up front on the calling thread, exactly
	// like the synchronous form.
	instances := c.GenerateMaterialInstances(template, data)

	operation := &MergeOperation{running: 1}

	absolutes := make([]math.Mat4, len(data.Nodes))
	transformTasks := make([]*systems.TaskHandle, len(data.Nodes))

	var sections []*components.MeshSection
	var sectionTasks []*systems.TaskHandle

	for index := range data.Nodes {
		node := &data.Nodes[index]

		nodeIndex := index
		parentIndex := node.ParentNodeIndex
		if parentIndex == mesh.NoParent {
			transformTasks[index] = jobs.SubmitTask(func() error {
				absolutes[nodeIndex] = data.Nodes[nodeIndex].RelativeTransform
				return nil
			})
		} else {
			transformTasks[index] = jobs.SubmitTask(func() error {
				absolutes[nodeIndex] = data.Nodes[nodeIndex].RelativeTransform.Mul(absolutes[parentIndex])
				return nil
			}, transformTasks[parentIndex])
		}

		for s := range node.Sections {
			section := liveSection(&node.Sections[s], instances)
			sections = append(sections, section)

			// the two tasks write disjoint fields of the same section
			vertexTask := jobs.SubmitTask(func() error {
				transformSectionVertices(section, absolutes[nodeIndex])
				return nil
			}, transformTasks[index])
			directionTask := jobs.SubmitTask(func() error {
				transformSectionDirections(section, absolutes[nodeIndex])
				return nil
			}, transformTasks[index])
			sectionTasks = append(sectionTasks, vertexTask, directionTask)
		}
	}

	join := jobs.SubmitTask(func() error {
		target.Owner().Dispatch(func() {
			for _, section := range sections {
				c.builder.CreateSection(target, section)
			}
			c.builder.Finalize(target)
			operation.finish()
		})
		return nil
	}, sectionTasks...)

	go func() {
		if err := join.Wait(); err != nil {
			core.LogError("merge task graph failed: %s", err.Error())
			operation.finish()
		}
	}()

	return operation
}
