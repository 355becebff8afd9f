package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidatesArguments(t *testing.T) {
	_, err := NewJobSystem(0, 16)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(4, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsSubmittedJobs(t *testing.T) {
	js, err := NewJobSystem(4, 16)
	require.NoError(t, err)

	var counter int32
	wg := sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		js.Submit(JobTask{
			OnStart: func(params []interface{}, results chan interface{}) error {
				atomic.AddInt32(&counter, 1)
				return nil
			},
			OnCompletionCallback: func() { wg.Done() },
		})
	}
	wg.Wait()

	assert.Equal(t, int32(32), atomic.LoadInt32(&counter))
	require.NoError(t, js.Shutdown())
}

func TestJobSystemInvokesFailureHandler(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	completed := false
	failed := false
	done := make(chan struct{})
	js.Submit(JobTask{
		OnStart: func(params []interface{}, results chan interface{}) error {
			return errors.New("no luck")
		},
		OnComplete:           func(results chan interface{}) { completed = true },
		OnFailure:            func(results chan interface{}) { failed = true },
		OnCompletionCallback: func() { close(done) },
	})
	<-done

	assert.True(t, failed)
	assert.False(t, completed)
}

func TestJobSystemPassesInputParams(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	got := make(chan interface{}, 1)
	done := make(chan struct{})
	js.Submit(JobTask{
		InputParams: []interface{}{"asset.glb", 7},
		OnStart: func(params []interface{}, results chan interface{}) error {
			results <- params[0]
			return nil
		},
		OnComplete: func(results chan interface{}) {
			got <- <-results
		},
		OnCompletionCallback: func() { close(done) },
	})
	<-done

	assert.Equal(t, "asset.glb", <-got)
}

func TestSubmitTaskWaitReturnsRunError(t *testing.T) {
	js, err := NewJobSystem(2, 8)
	require.NoError(t, err)
	defer js.Shutdown()

	boom := errors.New("boom")
	handle := js.SubmitTask(func() error { return boom })
	assert.ErrorIs(t, handle.Wait(), boom)

	handle = js.SubmitTask(func() error { return nil })
	assert.NoError(t, handle.Wait())
}

func TestSubmitTaskHonorsPrerequisiteOrder(t *testing.T) {
	js, err := NewJobSystem(4, 16)
	require.NoError(t, err)
	defer js.Shutdown()

	mu := sync.Mutex{}
	order := []string{}
	record := func(name string) func() error {
		return func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	first := js.SubmitTask(record("first"))
	second := js.SubmitTask(record("second"), first)
	third := js.SubmitTask(record("third"), second)

	require.NoError(t, third.Wait())
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSubmitTaskJoinsMultiplePrerequisites(t *testing.T) {
	js, err := NewJobSystem(4, 16)
	require.NoError(t, err)
	defer js.Shutdown()

	var counter int32
	bump := func() error {
		atomic.AddInt32(&counter, 1)
		return nil
	}

	a := js.SubmitTask(bump)
	b := js.SubmitTask(bump)
	c := js.SubmitTask(bump)

	join := js.SubmitTask(func() error {
		if atomic.LoadInt32(&counter) != 3 {
			return errors.New("joined before all prerequisites finished")
		}
		return nil
	}, a, b, c)

	assert.NoError(t, join.Wait())
}

func TestSubmitTaskSkipsRunWhenPrerequisiteFails(t *testing.T) {
	js, err := NewJobSystem(2, 8)
	require.NoError(t, err)
	defer js.Shutdown()

	failing := js.SubmitTask(func() error { return errors.New("upstream failed") })

	ran := int32(0)
	dependent := js.SubmitTask(func() error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}, failing)
	grandchild := js.SubmitTask(func() error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}, dependent)

	assert.Error(t, dependent.Wait())
	assert.Error(t, grandchild.Wait())
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestSubmitTaskDoneChannelCloses(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	handle := js.SubmitTask(func() error { return nil })
	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task never finished")
	}
}
