package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// TransitivePaths computes the ancestor relation implicit in child_path (a
// path like x.y.z is only directly tied to x through a chain of edges) and
// propagates the per-point base facts down to every descendant, since moves
// and assignments are only ever recorded against the outermost path that was
// actually touched.
type TransitivePaths struct{}

func (TransitivePaths) Name() string { return "transitive_paths" }
func (TransitivePaths) Inputs() []string {
	return []string{
		store.RelChildPath,
		store.RelPathIsVar,
		store.RelPathAssignedAtBase,
		store.RelPathMovedAtBase,
		store.RelPathAccessedAtBase,
	}
}
func (TransitivePaths) Outputs() []string {
	return []string{
		store.RelPathAssignedAt,
		store.RelPathMovedAt,
		store.RelPathAccessedAt,
		store.RelPathBeginsWithVar,
	}
}

func (TransitivePaths) Run(_ context.Context, s *store.FactStore) error {
	childPath := store.MustLoad[store.ChildPath](s, store.RelChildPath)
	pathIsVar := store.MustLoad[store.PathIsVar](s, store.RelPathIsVar)
	assignedBase := store.MustLoad[store.PathAssignedAtBase](s, store.RelPathAssignedAtBase)
	movedBase := store.MustLoad[store.PathMovedAtBase](s, store.RelPathMovedAtBase)
	accessedBase := store.MustLoad[store.PathAccessedAtBase](s, store.RelPathAccessedAtBase)

	descendants := descendantsOf(childPath)

	assigned := propagatePointFact(assignedBase, descendants, func(b store.PathAssignedAtBase) (atom.Path, atom.Point) { return b.Path, b.Point },
		func(p atom.Path, pt atom.Point) store.PathAssignedAt { return store.PathAssignedAt{Path: p, Point: pt} })
	moved := propagatePointFact(movedBase, descendants, func(b store.PathMovedAtBase) (atom.Path, atom.Point) { return b.Path, b.Point },
		func(p atom.Path, pt atom.Point) store.PathMovedAt { return store.PathMovedAt{Path: p, Point: pt} })
	accessed := propagatePointFact(accessedBase, descendants, func(b store.PathAccessedAtBase) (atom.Path, atom.Point) { return b.Path, b.Point },
		func(p atom.Path, pt atom.Point) store.PathAccessedAt { return store.PathAccessedAt{Path: p, Point: pt} })

	var beginsWith []store.PathBeginsWithVar
	for _, iv := range pathIsVar.All() {
		beginsWith = append(beginsWith, store.PathBeginsWithVar{Path: iv.Path, Var: iv.Var})
		for _, d := range descendants[iv.Path] {
			beginsWith = append(beginsWith, store.PathBeginsWithVar{Path: d, Var: iv.Var})
		}
	}

	if err := store.Store(s, store.RelPathAssignedAt, relation.Build(assigned, store.LessPathAssignedAt)); err != nil {
		return err
	}
	if err := store.Store(s, store.RelPathMovedAt, relation.Build(moved, store.LessPathMovedAt)); err != nil {
		return err
	}
	if err := store.Store(s, store.RelPathAccessedAt, relation.Build(accessed, store.LessPathAccessedAt)); err != nil {
		return err
	}
	return store.Store(s, store.RelPathBeginsWithVar, relation.Build(beginsWith, store.LessPathBeginsWithVar))
}

// descendantsOf builds, for every path that appears as a parent in
// child_path, the set of all paths transitively nested beneath it. Paths
// form a forest in practice, but the traversal tolerates arbitrary DAGs.
func descendantsOf(childPath *relation.Relation[store.ChildPath]) map[atom.Path][]atom.Path {
	directChildren := make(map[atom.Path][]atom.Path)
	for _, cp := range childPath.All() {
		directChildren[cp.Parent] = append(directChildren[cp.Parent], cp.Child)
	}

	memo := make(map[atom.Path][]atom.Path)
	var resolve func(atom.Path, map[atom.Path]bool) []atom.Path
	resolve = func(p atom.Path, onStack map[atom.Path]bool) []atom.Path {
		if d, ok := memo[p]; ok {
			return d
		}
		if onStack[p] {
			return nil
		}
		onStack[p] = true
		seen := make(map[atom.Path]struct{})
		for _, c := range directChildren[p] {
			seen[c] = struct{}{}
			for _, gc := range resolve(c, onStack) {
				seen[gc] = struct{}{}
			}
		}
		delete(onStack, p)
		out := make([]atom.Path, 0, len(seen))
		for d := range seen {
			out = append(out, d)
		}
		memo[p] = out
		return out
	}

	result := make(map[atom.Path][]atom.Path, len(directChildren))
	for p := range directChildren {
		result[p] = resolve(p, make(map[atom.Path]bool))
	}
	return result
}

func propagatePointFact[B any, T any](base *relation.Relation[B], descendants map[atom.Path][]atom.Path, key func(B) (atom.Path, atom.Point), build func(atom.Path, atom.Point) T) []T {
	var out []T
	for _, b := range base.All() {
		path, point := key(b)
		out = append(out, build(path, point))
		for _, d := range descendants[path] {
			out = append(out, build(d, point))
		}
	}
	return out
}

// MaybeInit computes path_maybe_initialized_on_exit: seeded from
// path_assigned_at, propagated forward across cfg_edge while the path is not
// moved at the successor.
type MaybeInit struct{}

func (MaybeInit) Name() string { return "maybe_init" }
func (MaybeInit) Inputs() []string {
	return []string{store.RelPathAssignedAt, store.RelPathMovedAt, store.RelCfgEdge}
}
func (MaybeInit) Outputs() []string { return []string{store.RelPathMaybeInitializedOnExit} }

func (MaybeInit) Run(_ context.Context, s *store.FactStore) error {
	assigned := store.MustLoad[store.PathAssignedAt](s, store.RelPathAssignedAt)
	moved := store.MustLoad[store.PathMovedAt](s, store.RelPathMovedAt)
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)

	movedAt := make(map[atom.Path]map[atom.Point]struct{})
	for _, m := range moved.All() {
		if movedAt[m.Path] == nil {
			movedAt[m.Path] = make(map[atom.Point]struct{})
		}
		movedAt[m.Path][m.Point] = struct{}{}
	}
	fwd := forwardEdgeIndex(edges)

	live := make(map[atom.Path]map[atom.Point]struct{})
	var worklist []store.PathAssignedAt
	for _, a := range assigned.All() {
		if live[a.Path] == nil {
			live[a.Path] = make(map[atom.Point]struct{})
		}
		if _, ok := live[a.Path][a.Point]; !ok {
			live[a.Path][a.Point] = struct{}{}
			worklist = append(worklist, store.PathAssignedAt{Path: a.Path, Point: a.Point})
		}
	}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, next := range fwd(cur.Point) {
			if _, killed := movedAt[cur.Path][next]; killed {
				continue
			}
			if live[cur.Path] == nil {
				live[cur.Path] = make(map[atom.Point]struct{})
			}
			if _, ok := live[cur.Path][next]; ok {
				continue
			}
			live[cur.Path][next] = struct{}{}
			worklist = append(worklist, store.PathAssignedAt{Path: cur.Path, Point: next})
		}
	}

	var out []store.PathMaybeInitializedOnExit
	for p, pts := range live {
		for pt := range pts {
			out = append(out, store.PathMaybeInitializedOnExit{Path: p, Point: pt})
		}
	}
	return store.Store(s, store.RelPathMaybeInitializedOnExit, relation.Build(out, store.LessPathMaybeInitializedOnExit))
}

// MaybeUninit computes path_maybe_uninitialized_on_exit, the symmetric twin
// of MaybeInit: seeded from path_moved_at, propagated forward unless killed
// by path_assigned_at.
type MaybeUninit struct{}

func (MaybeUninit) Name() string { return "maybe_uninit" }
func (MaybeUninit) Inputs() []string {
	return []string{store.RelPathMovedAt, store.RelPathAssignedAt, store.RelCfgEdge}
}
func (MaybeUninit) Outputs() []string {
	return []string{store.RelPathMaybeUninitializedOnExit}
}

func (MaybeUninit) Run(_ context.Context, s *store.FactStore) error {
	moved := store.MustLoad[store.PathMovedAt](s, store.RelPathMovedAt)
	assigned := store.MustLoad[store.PathAssignedAt](s, store.RelPathAssignedAt)
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)

	assignedAt := make(map[atom.Path]map[atom.Point]struct{})
	for _, a := range assigned.All() {
		if assignedAt[a.Path] == nil {
			assignedAt[a.Path] = make(map[atom.Point]struct{})
		}
		assignedAt[a.Path][a.Point] = struct{}{}
	}
	fwd := forwardEdgeIndex(edges)

	live := make(map[atom.Path]map[atom.Point]struct{})
	var worklist []store.PathMovedAt
	for _, m := range moved.All() {
		if live[m.Path] == nil {
			live[m.Path] = make(map[atom.Point]struct{})
		}
		if _, ok := live[m.Path][m.Point]; !ok {
			live[m.Path][m.Point] = struct{}{}
			worklist = append(worklist, store.PathMovedAt{Path: m.Path, Point: m.Point})
		}
	}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, next := range fwd(cur.Point) {
			if _, killed := assignedAt[cur.Path][next]; killed {
				continue
			}
			if live[cur.Path] == nil {
				live[cur.Path] = make(map[atom.Point]struct{})
			}
			if _, ok := live[cur.Path][next]; ok {
				continue
			}
			live[cur.Path][next] = struct{}{}
			worklist = append(worklist, store.PathMovedAt{Path: cur.Path, Point: next})
		}
	}

	var out []store.PathMaybeUninitializedOnExit
	for p, pts := range live {
		for pt := range pts {
			out = append(out, store.PathMaybeUninitializedOnExit{Path: p, Point: pt})
		}
	}
	return store.Store(s, store.RelPathMaybeUninitializedOnExit, relation.Build(out, store.LessPathMaybeUninitializedOnExit))
}

// DropInitFusion derives var_maybe_partly_initialized_on_exit (the
// path-level initialization facts flattened back onto the variable a path
// begins with) and var_dropped_while_init_at (the subset of var_dropped_at
// where the drop is not a no-op).
type DropInitFusion struct{}

func (DropInitFusion) Name() string { return "drop_init_fusion" }
func (DropInitFusion) Inputs() []string {
	return []string{store.RelPathMaybeInitializedOnExit, store.RelPathBeginsWithVar, store.RelVarDroppedAt}
}
func (DropInitFusion) Outputs() []string {
	return []string{store.RelVarMaybePartlyInitOnExit, store.RelVarDroppedWhileInitAt}
}

func (DropInitFusion) Run(_ context.Context, s *store.FactStore) error {
	maybeInit := store.MustLoad[store.PathMaybeInitializedOnExit](s, store.RelPathMaybeInitializedOnExit)
	beginsWith := store.MustLoad[store.PathBeginsWithVar](s, store.RelPathBeginsWithVar)
	dropped := store.MustLoad[store.VarDroppedAt](s, store.RelVarDroppedAt)

	varByPath := make(map[atom.Path][]atom.Variable)
	for _, bw := range beginsWith.All() {
		varByPath[bw.Path] = append(varByPath[bw.Path], bw.Var)
	}

	partlyInit := make(map[atom.Variable]map[atom.Point]struct{})
	for _, mi := range maybeInit.All() {
		for _, v := range varByPath[mi.Path] {
			if partlyInit[v] == nil {
				partlyInit[v] = make(map[atom.Point]struct{})
			}
			partlyInit[v][mi.Point] = struct{}{}
		}
	}

	var partlyInitOut []store.VarMaybePartlyInitOnExit
	for v, pts := range partlyInit {
		for pt := range pts {
			partlyInitOut = append(partlyInitOut, store.VarMaybePartlyInitOnExit{Var: v, Point: pt})
		}
	}

	var droppedWhileInit []store.VarDroppedWhileInitAt
	for _, d := range dropped.All() {
		if _, ok := partlyInit[d.Var][d.Point]; ok {
			droppedWhileInit = append(droppedWhileInit, store.VarDroppedWhileInitAt{Var: d.Var, Point: d.Point})
		}
	}

	if err := store.Store(s, store.RelVarMaybePartlyInitOnExit, relation.Build(partlyInitOut, store.LessVarMaybePartlyInitOnExit)); err != nil {
		return err
	}
	return store.Store(s, store.RelVarDroppedWhileInitAt, relation.Build(droppedWhileInit, store.LessVarDroppedWhileInitAt))
}

// MoveErrors computes move_errors(path, target): a path accessed at a point
// reachable from somewhere it may still be uninitialized.
type MoveErrors struct{}

func (MoveErrors) Name() string { return "move_errors" }
func (MoveErrors) Inputs() []string {
	return []string{store.RelPathMaybeUninitializedOnExit, store.RelCfgEdge, store.RelPathAccessedAt}
}
func (MoveErrors) Outputs() []string { return []string{store.RelMoveErrors} }

func (MoveErrors) Run(_ context.Context, s *store.FactStore) error {
	maybeUninit := store.MustLoad[store.PathMaybeUninitializedOnExit](s, store.RelPathMaybeUninitializedOnExit)
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)
	accessed := store.MustLoad[store.PathAccessedAt](s, store.RelPathAccessedAt)

	accessedAt := make(map[atom.Path]map[atom.Point]struct{})
	for _, a := range accessed.All() {
		if accessedAt[a.Path] == nil {
			accessedAt[a.Path] = make(map[atom.Point]struct{})
		}
		accessedAt[a.Path][a.Point] = struct{}{}
	}
	fwd := forwardEdgeIndex(edges)

	seen := make(map[store.MoveError]struct{})
	var out []store.MoveError
	for _, mu := range maybeUninit.All() {
		for _, target := range fwd(mu.Point) {
			if _, ok := accessedAt[mu.Path][target]; !ok {
				continue
			}
			me := store.MoveError{Path: mu.Path, Point: target}
			if _, dup := seen[me]; dup {
				continue
			}
			seen[me] = struct{}{}
			out = append(out, me)
		}
	}
	return store.Store(s, store.RelMoveErrors, relation.Build(out, store.LessMoveError))
}
