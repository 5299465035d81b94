// Package relation implements the engine's core data structure: an
// immutable, sorted, deduplicated sequence of fixed-shape tuples.
//
// A Relation never mutates once built. Joins and antijoins need keyed
// lookup; callers that need that build an Index (see index.go) over a
// Relation's tuples rather than the Relation maintaining one itself, since
// different rules key the same relation on different columns.
package relation

import "sort"

// Relation is a sorted, deduplicated sequence of tuples of type T. T is
// normally a small struct of atom.Atom-derived fields (see internal/store's
// schema types) or an iteration.KV pair; either way T must be comparable so
// that deduplication is a plain equality check.
type Relation[T comparable] struct {
	tuples []T
}

// Build sorts and deduplicates tuples according to less, returning a new
// Relation. The input slice is copied; it is not retained or mutated.
func Build[T comparable](tuples []T, less func(a, b T) bool) *Relation[T] {
	ts := append(make([]T, 0, len(tuples)), tuples...)
	sort.Slice(ts, func(i, j int) bool { return less(ts[i], ts[j]) })
	out := ts[:0]
	for i, t := range ts {
		if i == 0 || t != ts[i-1] {
			out = append(out, t)
		}
	}
	return &Relation[T]{tuples: out}
}

// Empty returns a Relation with no tuples.
func Empty[T comparable]() *Relation[T] {
	return &Relation[T]{}
}

// Len returns the number of tuples.
func (r *Relation[T]) Len() int { return len(r.tuples) }

// IsEmpty reports whether the relation has no tuples.
func (r *Relation[T]) IsEmpty() bool { return len(r.tuples) == 0 }

// All returns the relation's tuples in canonical order. The caller must not
// mutate the returned slice: it is the relation's own backing array.
func (r *Relation[T]) All() []T { return r.tuples }

// Contains reports whether t is present, via binary search against the
// canonical order defined by less (which must agree with the order Build
// used to construct r).
func (r *Relation[T]) Contains(t T, less func(a, b T) bool) bool {
	i := sort.Search(len(r.tuples), func(i int) bool { return !less(r.tuples[i], t) })
	return i < len(r.tuples) && r.tuples[i] == t
}

// Equal reports whether a and b hold the same tuples in the same order.
// Because every Relation is canonically sorted and deduplicated, set
// equality and sequence equality coincide; this is what the store's
// double-write check relies on.
func Equal[T comparable](a, b *Relation[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, t := range a.tuples {
		if t != b.tuples[i] {
			return false
		}
	}
	return true
}

// Project builds a new Relation by mapping f over every tuple of r,
// deduplicating and sorting the result according to less.
func Project[S comparable, T comparable](r *Relation[S], less func(a, b T) bool, f func(S) T) *Relation[T] {
	out := make([]T, 0, r.Len())
	for _, s := range r.tuples {
		out = append(out, f(s))
	}
	return Build(out, less)
}
