package constructor

import (
	"sync/atomic"

	"github.com/spaghettifunk/forma/engine/components"
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/loader"
	"github.com/spaghettifunk/forma/engine/systems"
)

/**
 * @brief ConstructMeshComponentTreeFromAssetFile chains extraction and
 * construction: load the model file, then build a live component tree from
 * the result. On load failure no components are created and the failure
 * result is passed through. Must run on the owner thread.
 */
func (c *Constructor) ConstructMeshComponentTreeFromAssetFile(meshLoader *loader.Loader, owner *components.Actor, path string, template *components.MaterialTemplate, deferRegistration bool) (*components.MeshComponent, loader.LoadResult) {
	core.Assertf(meshLoader != nil, "import requires a loader")

	data, result := meshLoader.LoadMeshFromAssetFile(path)
	if result != loader.LoadResultSuccess {
		return nil, result
	}
	return c.ConstructMeshComponentTree(owner, &data, template, deferRegistration), result
}

// ConstructMeshComponentTreeFromAssetData is the buffer form of
// ConstructMeshComponentTreeFromAssetFile.
func (c *Constructor) ConstructMeshComponentTreeFromAssetData(meshLoader *loader.Loader, owner *components.Actor, assetData []byte, template *components.MaterialTemplate, deferRegistration bool) (*components.MeshComponent, loader.LoadResult) {
	core.Assertf(meshLoader != nil, "import requires a loader")

	data, result := meshLoader.LoadMeshFromAssetData(assetData)
	if result != loader.LoadResultSuccess {
		return nil, result
	}
	return c.ConstructMeshComponentTree(owner, &data, template, deferRegistration), result
}

/**
 * @brief ImportOperation tracks one in-flight asynchronous import. Root and
 * Result are valid once IsRunning reports false.
 */
type ImportOperation struct {
	running int32
	result  loader.LoadResult
	root    *components.MeshComponent
}

func (op *ImportOperation) IsRunning() bool {
	return atomic.LoadInt32(&op.running) == 1
}

func (op *ImportOperation) Result() loader.LoadResult       { return op.result }
func (op *ImportOperation) Root() *components.MeshComponent { return op.root }

/**
 * @brief ConstructMeshComponentTreeFromAssetFileAsync runs extraction on
 * the worker pool and dispatches construction to the owner. The tree is
 * always built with deferred registration and published in the same owner
 * task, so no partially built tree is ever visible. The caller polls
 * IsRunning once per frame while pumping the owner's tasks.
 */
func (c *Constructor) ConstructMeshComponentTreeFromAssetFileAsync(jobs *systems.JobSystem, meshLoader *loader.Loader, owner *components.Actor, path string, template *components.MaterialTemplate) *ImportOperation {
	core.Assertf(jobs != nil, "async import requires a job system")
	core.Assertf(meshLoader != nil, "import requires a loader")
	core.Assertf(owner != nil, "import requires an owning actor")

	operation := &ImportOperation{running: 1}

	jobs.SubmitTask(func() error {
		data, result := meshLoader.LoadMeshFromAssetFile(path)
		owner.Dispatch(func() {
			operation.result = result
			if result == loader.LoadResultSuccess {
				operation.root = c.ConstructMeshComponentTree(owner, &data, template, true)
				RegisterMeshComponentTree(operation.root)
			}
			atomic.StoreInt32(&operation.running, 0)
		})
		return nil
	})

	return operation
}
