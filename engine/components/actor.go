package components

import (
	"sync"

	"github.com/spaghettifunk/forma/engine/containers"
	"github.com/spaghettifunk/forma/engine/core"
)

/**
 * @brief Actor owns a tree of mesh components and the task queue that
 * stands in for the engine game thread. Background workers never touch live
 * components directly; they enqueue a task with Dispatch and the owning
 * loop drains the queue once per frame with PumpTasks. Everything that
 * mutates a live scene object (section creation, material assignment,
 * registration) runs through here.
 */
type Actor struct {
	id   string
	name string

	mu    sync.Mutex
	tasks *containers.RingQueue[func()]

	registered []*MeshComponent
	root       *MeshComponent
}

func NewActor(name string) *Actor {
	return &Actor{
		id:    core.IdentifierAcquireNew(),
		name:  name,
		tasks: containers.NewRingQueue[func()](64),
	}
}

func (a *Actor) ID() string   { return a.id }
func (a *Actor) Name() string { return a.name }

/** @brief Dispatch queues a task for the owning loop. Safe to call from
 * any goroutine. */
func (a *Actor) Dispatch(task func()) {
	a.mu.Lock()
	a.tasks.Enqueue(task)
	a.mu.Unlock()
}

/**
 * @brief PumpTasks drains the task queue on the calling goroutine and
 * returns how many tasks ran. The caller is the designated owner thread;
 * tasks run outside the lock so they may Dispatch follow-up work.
 */
func (a *Actor) PumpTasks() int {
	a.mu.Lock()
	pending := make([]func(), 0, a.tasks.Len())
	for {
		task, ok := a.tasks.Dequeue()
		if !ok {
			break
		}
		pending = append(pending, task)
	}
	a.mu.Unlock()

	for _, task := range pending {
		task()
	}
	return len(pending)
}

/** @brief RootComponent returns the first registered root, nil before any
 * registration happened. */
func (a *Actor) RootComponent() *MeshComponent {
	return a.root
}

// RegisteredComponents returns the components published to this actor, in
// registration order.
func (a *Actor) RegisteredComponents() []*MeshComponent {
	return a.registered
}

func (a *Actor) addRegistered(component *MeshComponent) {
	if a.root == nil && component.parent == nil {
		a.root = component
	}
	a.registered = append(a.registered, component)
}
