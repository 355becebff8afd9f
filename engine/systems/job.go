package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/forma/engine/core"
)

/** @brief A function invoked when a job starts. Results for the completion
 * handlers are pushed into the channel. */
type JobStart func(params []interface{}, results chan interface{}) error

/** @brief A function invoked when a job completes or fails. */
type JobOnComplete func(results chan interface{})

/**
 * @brief Describes a job to be run on the worker pool.
 */
type JobTask struct {
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams []interface{}
	/** @brief Invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked when the job successfully completes. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked when the job fails. Optional. */
	OnFailure JobOnComplete
	/** @brief Invoked after either completion handler ran. Optional. */
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan JobTask, channelSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				paramsChan := make(chan interface{}, 1)
				// Run the job and handle potential errors
				err := job.OnStart(job.InputParams, paramsChan)
				if err != nil {
					core.LogError(err.Error())
					if job.OnFailure != nil {
						job.OnFailure(paramsChan)
					}
				} else {
					if job.OnComplete != nil {
						job.OnComplete(paramsChan)
					}
				}

				// Call the completion callback if set
				if job.OnCompletionCallback != nil {
					job.OnCompletionCallback()
				}
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Pending jobs are drained before the
 * workers exit.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

// AddWorkNonBlocking adds work to the pool and returns immediately
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go js.Submit(jt)
}

/**
 * @brief Submits the provided job to be queued for execution.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}

/**
 * @brief TaskHandle tracks one submitted task. Done closes after the task
 * finished or was skipped because a prerequisite failed; Err is valid once
 * Done is closed.
 */
type TaskHandle struct {
	done chan struct{}
	err  error
}

func (h *TaskHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the task finished and returns its error.
func (h *TaskHandle) Wait() error {
	<-h.done
	return h.err
}

func (h *TaskHandle) finish(err error) {
	h.err = err
	close(h.done)
}

/**
 * @brief SubmitTask schedules run behind the given prerequisites and
 * returns a handle other tasks can depend on. The prerequisite wait happens
 * off the worker pool, so dependency chains never starve the workers. A
 * failed prerequisite skips run and propagates the failure down the graph.
 */
func (js *JobSystem) SubmitTask(run func() error, prerequisites ...*TaskHandle) *TaskHandle {
	handle := &TaskHandle{done: make(chan struct{})}

	go func() {
		for _, prerequisite := range prerequisites {
			if err := prerequisite.Wait(); err != nil {
				handle.finish(fmt.Errorf("prerequisite task failed: %w", err))
				return
			}
		}
		var runErr error
		js.Submit(JobTask{
			OnStart: func(params []interface{}, results chan interface{}) error {
				runErr = run()
				return runErr
			},
			OnCompletionCallback: func() {
				handle.finish(runErr)
			},
		})
	}()

	return handle
}
