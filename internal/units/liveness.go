package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/iteration"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// Liveness computes var_live_on_entry, var_drop_live_on_entry, and, derived
// from both, origin_live_on_entry: a use or a drop at a point keeps the
// variable (and transitively the origins it dereferences) live backwards
// across every predecessor edge that does not redefine it, and every
// universal region is live at every point in the function body.
type Liveness struct{}

func (Liveness) Name() string { return "liveness" }
func (Liveness) Inputs() []string {
	return []string{
		store.RelVarUsedAt,
		store.RelVarDefinedAt,
		store.RelVarDroppedWhileInitAt,
		store.RelUseOfVarDerefsOrigin,
		store.RelDropOfVarDerefsOrigin,
		store.RelCfgEdge,
		store.RelCfgNode,
		store.RelUniversalRegion,
	}
}
func (Liveness) Outputs() []string {
	return []string{store.RelVarLiveOnEntry, store.RelVarDropLiveOnEntry, store.RelOriginLiveOnEntry}
}

func (Liveness) Run(_ context.Context, s *store.FactStore) error {
	usedAt := store.MustLoad[store.VarUsedAt](s, store.RelVarUsedAt)
	definedAt := store.MustLoad[store.VarDefinedAt](s, store.RelVarDefinedAt)
	droppedWhileInit := store.MustLoad[store.VarDroppedWhileInitAt](s, store.RelVarDroppedWhileInitAt)
	usesDeref := store.MustLoad[store.UseOfVarDerefsOrigin](s, store.RelUseOfVarDerefsOrigin)
	dropsDeref := store.MustLoad[store.DropOfVarDerefsOrigin](s, store.RelDropOfVarDerefsOrigin)
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)
	nodes := store.MustLoad[store.CfgNode](s, store.RelCfgNode)
	universals := store.MustLoad[store.UniversalRegion](s, store.RelUniversalRegion)

	rev := reverseEdgeIndex(edges)
	definedAtPoint := make(map[atom.Variable]map[atom.Point]struct{})
	for _, d := range definedAt.All() {
		if definedAtPoint[d.Var] == nil {
			definedAtPoint[d.Var] = make(map[atom.Point]struct{})
		}
		definedAtPoint[d.Var][d.Point] = struct{}{}
	}
	notDefined := func(v atom.Variable, p atom.Point) bool {
		_, ok := definedAtPoint[v][p]
		return !ok
	}

	varLive := propagateBackward(usedAt.All(), func(u store.VarUsedAt) (atom.Variable, atom.Point) { return u.Var, u.Point }, rev, notDefined)
	dropLive := propagateBackward(droppedWhileInit.All(), func(d store.VarDroppedWhileInitAt) (atom.Variable, atom.Point) { return d.Var, d.Point }, rev, notDefined)

	var varLiveOut []store.VarLiveOnEntry
	for _, kv := range varLive {
		varLiveOut = append(varLiveOut, store.VarLiveOnEntry{Var: kv.Key, Point: kv.Val})
	}
	var dropLiveOut []store.VarDropLiveOnEntry
	for _, kv := range dropLive {
		dropLiveOut = append(dropLiveOut, store.VarDropLiveOnEntry{Var: kv.Key, Point: kv.Val})
	}

	derefUse := make(map[atom.Variable][]atom.Origin)
	for _, u := range usesDeref.All() {
		derefUse[u.Var] = append(derefUse[u.Var], u.Origin)
	}
	derefDrop := make(map[atom.Variable][]atom.Origin)
	for _, d := range dropsDeref.All() {
		derefDrop[d.Var] = append(derefDrop[d.Var], d.Origin)
	}

	seen := make(map[store.OriginLiveOnEntry]struct{})
	var originLiveOut []store.OriginLiveOnEntry
	emit := func(o atom.Origin, p atom.Point) {
		t := store.OriginLiveOnEntry{Origin: o, Point: p}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		originLiveOut = append(originLiveOut, t)
	}
	for _, kv := range varLive {
		for _, o := range derefUse[kv.Key] {
			emit(o, kv.Val)
		}
	}
	for _, kv := range dropLive {
		for _, o := range derefDrop[kv.Key] {
			emit(o, kv.Val)
		}
	}
	for _, u := range universals.All() {
		for _, n := range nodes.All() {
			emit(u.Origin, n.Point)
		}
	}

	if err := store.Store(s, store.RelVarLiveOnEntry, relation.Build(varLiveOut, store.LessVarLiveOnEntry)); err != nil {
		return err
	}
	if err := store.Store(s, store.RelVarDropLiveOnEntry, relation.Build(dropLiveOut, store.LessVarDropLiveOnEntry)); err != nil {
		return err
	}
	return store.Store(s, store.RelOriginLiveOnEntry, relation.Build(originLiveOut, store.LessOriginLiveOnEntry))
}

// propagateBackward runs the fact engine's generic leapjoin-driven fixed
// point to propagate a seed of (key, point) pairs backwards across cfg
// edges, via the reverse-edge index rev, stopping whenever keep reports the
// predecessor does not survive (e.g. because the variable is redefined
// there).
func propagateBackward[S any](
	seed []S,
	extract func(S) (atom.Variable, atom.Point),
	rev func(atom.Point) []atom.Point,
	keep func(atom.Variable, atom.Point) bool,
) []iteration.KV[atom.Variable, atom.Point] {
	it := iteration.New()
	live := iteration.NewVariable[iteration.KV[atom.Variable, atom.Point]](it, "live_on_entry", func(a, b iteration.KV[atom.Variable, atom.Point]) bool {
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Val < b.Val
	})

	initial := make([]iteration.KV[atom.Variable, atom.Point], 0, len(seed))
	for _, t := range seed {
		v, p := extract(t)
		initial = append(initial, iteration.KV[atom.Variable, atom.Point]{Key: v, Val: p})
	}
	live.Insert(initial)

	leapers := []iteration.Leaper[iteration.KV[atom.Variable, atom.Point], atom.Point]{
		iteration.ExtendWith(func(s iteration.KV[atom.Variable, atom.Point]) []atom.Point {
			return rev(s.Val)
		}),
		iteration.FilterWith(func(s iteration.KV[atom.Variable, atom.Point], pred atom.Point) bool {
			return keep(s.Key, pred)
		}),
	}

	for it.Changed() {
		iteration.FromLeapjoin(live, live, leapers, func(s iteration.KV[atom.Variable, atom.Point], pred atom.Point) iteration.KV[atom.Variable, atom.Point] {
			return iteration.KV[atom.Variable, atom.Point]{Key: s.Key, Val: pred}
		})
	}

	return live.Complete().All()
}
