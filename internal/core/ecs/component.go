package ecs

import (
	"fmt"

	"github.com/kamstrup/intmap"
)

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Name() string
	Remove(id EntityID) bool
	Clear()
}

// Store is an ordered component store: one entry per entity, kept in
// insertion order. Removal preserves the relative order of the rest.
// No reflect, no interface{}.
type Store[T any] struct {
	name  string
	world *World

	ids   []EntityID
	data  []*T
	index *intmap.Map[EntityID, int]

	onRemove []func(EntityID, *T)

	scratch   []EntityID
	iterating int
}

// NewStore creates a store and registers it with the world's registry so
// that World.Destroy reaches it.
func NewStore[T any](w *World, name string) *Store[T] {
	s := &Store[T]{
		name:  name,
		world: w,
		ids:   make([]EntityID, 0, 64),
		data:  make([]*T, 0, 64),
		index: intmap.New[EntityID, int](64),
	}
	w.registry.Register(s)
	return s
}

func (s *Store[T]) Name() string { return s.name }

// Add appends c for id and makes this store the entity's owner.
func (s *Store[T]) Add(id EntityID, c *T) error {
	return s.add(id, c, true)
}

// Attach appends c for id without taking ownership. Used when a sibling
// system composes this store's service into an entity it owns.
func (s *Store[T]) Attach(id EntityID, c *T) error {
	return s.add(id, c, false)
}

func (s *Store[T]) add(id EntityID, c *T, own bool) error {
	if !s.world.Alive(id) {
		return fmt.Errorf("%s add %s: %w", s.name, id, ErrNotAlive)
	}
	if _, ok := s.index.Get(id); ok {
		return fmt.Errorf("%s add %s: %w", s.name, id, ErrDuplicate)
	}
	if own {
		if owner, ok := s.world.Owner(id); ok {
			return fmt.Errorf("%s add %s: owned by %s: %w", s.name, id, owner, ErrOwned)
		}
	}
	s.index.Put(id, len(s.ids))
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
	if own {
		s.world.claim(id, s.name)
	}
	return nil
}

// Remove drops id from the store. Removing an absent id is a no-op.
func (s *Store[T]) Remove(id EntityID) bool {
	i, ok := s.index.Get(id)
	if !ok {
		return false
	}
	c := s.data[i]

	copy(s.ids[i:], s.ids[i+1:])
	copy(s.data[i:], s.data[i+1:])
	last := len(s.ids) - 1
	s.ids = s.ids[:last]
	s.data[last] = nil
	s.data = s.data[:last]

	s.index.Del(id)
	for j := i; j < len(s.ids); j++ {
		s.index.Put(s.ids[j], j)
	}
	s.world.unclaim(id, s.name)

	for _, fn := range s.onRemove {
		fn(id, c)
	}
	return true
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index.Get(id)
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index.Get(id)
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the member ids in store order.
func (s *Store[T]) IDs() []EntityID {
	return append([]EntityID(nil), s.ids...)
}

// Each visits the entities present when Each was entered, in store order.
// Entities removed during the walk are not visited; entities added during
// the walk wait for the next call.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	snap := s.snapshot()
	defer func() { s.iterating-- }()

	for _, id := range snap {
		i, ok := s.index.Get(id)
		if !ok {
			continue // removed after the snapshot was taken
		}
		fn(id, s.data[i])
	}
}

func (s *Store[T]) snapshot() []EntityID {
	s.iterating++
	if s.iterating > 1 {
		return append([]EntityID(nil), s.ids...)
	}
	s.scratch = append(s.scratch[:0], s.ids...)
	return s.scratch
}

// OnRemove registers fn to run after a component leaves the store through
// Remove or World.Destroy. Clear does not run hooks.
func (s *Store[T]) OnRemove(fn func(EntityID, *T)) {
	s.onRemove = append(s.onRemove, fn)
}

// Clear drops every entity. No hooks run.
func (s *Store[T]) Clear() {
	for _, id := range s.ids {
		s.world.unclaim(id, s.name)
	}
	clear(s.data)
	s.ids = s.ids[:0]
	s.data = s.data[:0]
	s.index.Clear()
}
