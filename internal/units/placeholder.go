package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// PlaceholderClosure computes known_placeholder_subset, the transitive
// closure of known_placeholder_subset_base, and known_placeholder_requires,
// the set of placeholder loans each origin is known to require once that
// closure is accounted for: if origin1 is known to outlive origin2, every
// placeholder loan origin1 requires is also required by origin2.
type PlaceholderClosure struct{}

func (PlaceholderClosure) Name() string { return "placeholder_closure" }
func (PlaceholderClosure) Inputs() []string {
	return []string{store.RelKnownPlaceholderSubsetBase, store.RelPlaceholder}
}
func (PlaceholderClosure) Outputs() []string {
	return []string{store.RelKnownPlaceholderSubset, store.RelKnownPlaceholderRequires}
}

func (PlaceholderClosure) Run(_ context.Context, s *store.FactStore) error {
	base := store.MustLoad[store.KnownPlaceholderSubsetBase](s, store.RelKnownPlaceholderSubsetBase)
	placeholders := store.MustLoad[store.Placeholder](s, store.RelPlaceholder)

	direct := make(map[atom.Origin][]atom.Origin)
	for _, b := range base.All() {
		direct[b.Origin1] = append(direct[b.Origin1], b.Origin2)
	}

	reach := transitiveClosure(direct)

	var subsetOut []store.KnownPlaceholderSubset
	for o1, succs := range reach {
		for o2 := range succs {
			subsetOut = append(subsetOut, store.KnownPlaceholderSubset{Origin1: o1, Origin2: o2})
		}
	}

	requires := make(map[atom.Origin]map[atom.Loan]struct{})
	var addRequires func(o atom.Origin, l atom.Loan) bool
	addRequires = func(o atom.Origin, l atom.Loan) bool {
		if requires[o] == nil {
			requires[o] = make(map[atom.Loan]struct{})
		}
		if _, ok := requires[o][l]; ok {
			return false
		}
		requires[o][l] = struct{}{}
		return true
	}

	var worklist []store.KnownPlaceholderRequires
	for _, ph := range placeholders.All() {
		if addRequires(ph.Origin, ph.Loan) {
			worklist = append(worklist, store.KnownPlaceholderRequires{Origin: ph.Origin, Loan: ph.Loan})
		}
	}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for o2 := range reach[cur.Origin] {
			if addRequires(o2, cur.Loan) {
				worklist = append(worklist, store.KnownPlaceholderRequires{Origin: o2, Loan: cur.Loan})
			}
		}
	}

	var requiresOut []store.KnownPlaceholderRequires
	for o, loans := range requires {
		for l := range loans {
			requiresOut = append(requiresOut, store.KnownPlaceholderRequires{Origin: o, Loan: l})
		}
	}

	if err := store.Store(s, store.RelKnownPlaceholderSubset, relation.Build(subsetOut, store.LessKnownPlaceholderSubset)); err != nil {
		return err
	}
	return store.Store(s, store.RelKnownPlaceholderRequires, relation.Build(requiresOut, store.LessKnownPlaceholderRequires))
}

// transitiveClosure computes, for a directed graph given by its adjacency
// map, the set of nodes reachable from each node in one or more steps
// (irreflexive unless a cycle routes back to the start).
func transitiveClosure[N comparable](direct map[N][]N) map[N]map[N]struct{} {
	var resolve func(N, map[N]bool) map[N]struct{}
	resolve = func(n N, onStack map[N]bool) map[N]struct{} {
		if onStack[n] {
			return nil
		}
		onStack[n] = true
		out := make(map[N]struct{})
		for _, m := range direct[n] {
			out[m] = struct{}{}
			for r := range resolve(m, onStack) {
				out[r] = struct{}{}
			}
		}
		delete(onStack, n)
		return out
	}
	result := make(map[N]map[N]struct{}, len(direct))
	for n := range direct {
		result[n] = resolve(n, make(map[N]bool))
	}
	return result
}
