package archive

import "github.com/vfrnav/adr/pkg/uuid"

// Link is a reference consisting of a UUID plus an optional strong handle
// to the referenced object once resolved (§3 Link). It is generic over the
// resolved object's Go type so this leaf package never needs to know
// about the object model built on top of it. The zero value of T
// (typically a nil pointer) means "unresolved".
type Link[T any] struct {
	ID     uuid.UUID
	Object T
}

// Resolved reports whether Object has been filled in, for pointer- or
// interface-typed T (the zero value of either is nil).
func (l Link[T]) Resolved() bool {
	var zero T
	return any(l.Object) != any(zero)
}

// HibernateLink implements the Archive primitive for a Link field.
// Save/Load only ever touch the ID (the strong handle is never
// serialized — it is reconstructed lazily on first access after Load).
// ScanDeps records the ID as a dependency. ResolveLinks calls a.Resolve,
// which the store layer binds to a closure that itself knows how to
// recurse into the resolved object's own Links up to the Archive's
// remaining Depth (decrementing it on the way down) — a package this low
// in the dependency order cannot know how to walk the object model built
// on top of it, so the recursion is the resolver's responsibility, not
// this function's.
//
// A resolution failure is recorded in Unresolved rather than returned as
// an error, matching §7's "evaluation routines fall back to the invalid
// sentinel" contract (LinkUnresolvedError is reserved for explicit
// resolution requests, which the store layer raises itself when the
// caller demands one).
func HibernateLink[T any](a *Archive, l *Link[T]) error {
	switch a.Mode {
	case ModeSave, ModeLoad:
		return a.UUID(&l.ID)
	case ModeScanDeps:
		if a.Deps != nil && !l.ID.IsNil() {
			a.Deps[l.ID] = struct{}{}
		}
		return nil
	case ModeResolveLinks:
		if l.ID.IsNil() || a.Resolve == nil || a.Depth < 0 {
			return nil
		}
		obj, err := a.Resolve(l.ID)
		if err != nil {
			a.Unresolved = append(a.Unresolved, l.ID)
			return nil
		}
		t, ok := obj.(T)
		if !ok {
			a.Unresolved = append(a.Unresolved, l.ID)
			return nil
		}
		l.Object = t
		return nil
	}
	return nil
}

// LinkSet is an ordered set of Links that remembers whether any member
// remains unresolved.
type LinkSet[T any] struct {
	Links []Link[T]
}

// AllResolved reports whether every member of the set has a non-zero
// Object. isResolved lets callers supply their own "is this resolved"
// predicate for non-pointer T (e.g. an interface whose nil-ness can't be
// detected by simple comparison to a zero value of an unconstrained T).
func (ls LinkSet[T]) AllResolved(isResolved func(T) bool) bool {
	for _, l := range ls.Links {
		if !isResolved(l.Object) {
			return false
		}
	}
	return true
}

// HibernateLinkSet implements the Archive primitive for a LinkSet field,
// built on Slice and HibernateLink.
func HibernateLinkSet[T any](a *Archive, ls *LinkSet[T]) error {
	return Slice(a, &ls.Links, func(a *Archive, l *Link[T]) error {
		return HibernateLink(a, l)
	})
}
