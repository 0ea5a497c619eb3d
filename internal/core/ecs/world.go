package ecs

import "errors"

var (
	// ErrNotAlive is returned for ids that were never issued or are already destroyed.
	ErrNotAlive = errors.New("entity not alive")

	// ErrDuplicate is returned when an entity is added twice to one store.
	ErrDuplicate = errors.New("entity already in store")

	// ErrOwned is returned when a second store tries to own an entity.
	ErrOwned = errors.New("entity already owned")

	// ErrNotOwned is returned when destroying an entity no store owns.
	ErrNotOwned = errors.New("entity has no owner")
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the owner back-references, teardown hooks for composed
// registrations, and a deferred destruction queue flushed at tick end.
type World struct {
	pool         *EntityPool
	registry     *Registry
	owners       map[EntityID]string
	teardown     map[EntityID][]func()
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		owners:       make(map[EntityID]string, 256),
		teardown:     make(map[EntityID][]func()),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

// Spawn allocates a fresh entity handle. It belongs to no store until a
// store adds it.
func (w *World) Spawn() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Owner returns the name of the store that owns id.
func (w *World) Owner(id EntityID) (string, bool) {
	name, ok := w.owners[id]
	return name, ok
}

func (w *World) claim(id EntityID, store string) {
	w.owners[id] = store
}

func (w *World) unclaim(id EntityID, store string) {
	if w.owners[id] == store {
		delete(w.owners, id)
	}
}

// OnDestroy registers fn to run when id is destroyed. Hooks run in reverse
// registration order before the entity leaves its stores.
func (w *World) OnDestroy(id EntityID, fn func()) error {
	if !w.pool.Alive(id) {
		return ErrNotAlive
	}
	w.teardown[id] = append(w.teardown[id], fn)
	return nil
}

// Destroy removes id from every store and retires the handle. The entity
// must be owned: destroying a stale or unknown id returns ErrNotAlive, and a
// live entity that never joined an owning store returns ErrNotOwned.
func (w *World) Destroy(id EntityID) error {
	if !w.pool.Alive(id) {
		return ErrNotAlive
	}
	if _, ok := w.owners[id]; !ok {
		return ErrNotOwned
	}
	w.destroy(id)
	return nil
}

// Discard tears id down whether or not a store owns it. Builders use it to
// roll back an entity that failed half way through composition.
func (w *World) Discard(id EntityID) error {
	if !w.pool.Alive(id) {
		return ErrNotAlive
	}
	w.destroy(id)
	return nil
}

func (w *World) destroy(id EntityID) {
	hooks := w.teardown[id]
	delete(w.teardown, id)
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	w.registry.RemoveAll(id)
	delete(w.owners, id)
	w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and returns how many were
// still alive. Ids destroyed elsewhere in the meantime are skipped.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for i := 0; i < len(w.destroyQueue); i++ {
		if w.Destroy(w.destroyQueue[i]) == nil {
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// Live returns the number of live entities.
func (w *World) Live() int { return w.pool.Live() }

// Reset forgets every entity, store and pending destruction.
func (w *World) Reset() {
	w.registry.Reset()
	w.pool.Reset()
	w.owners = make(map[EntityID]string, 256)
	w.teardown = make(map[EntityID][]func())
	w.destroyQueue = w.destroyQueue[:0]
}
