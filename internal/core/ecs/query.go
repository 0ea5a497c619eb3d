package ecs

// Each2 iterates the entities of sa, in sa's order, that also have a
// component in sb. Snapshot rules are those of Store.Each on sa; an entity
// that loses its sb component mid-walk is skipped.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	sa.Each(func(id EntityID, a *A) {
		if b, ok := sb.Get(id); ok {
			fn(id, a, b)
		}
	})
}
