package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/input"
	"github.com/polonius-rs/polonius-go/internal/store"
)

func newStore(t *testing.T, f *input.Facts) *store.FactStore {
	t.Helper()
	s := store.New()
	require.NoError(t, f.Populate(s))
	return s
}

// TestS1SimpleInvalidation mirrors spec scenario S1: a loan issued under a
// live universal origin, invalidated one point later with nothing killing
// it in between, must be reported as an error.
func TestS1SimpleInvalidation(t *testing.T) {
	f := &input.Facts{
		UniversalRegion:   []store.UniversalRegion{{Origin: 1}},
		CfgEdge:           []store.CfgEdge{{From: 0, To: 1}},
		LoanIssuedAt:      []store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}},
		LoanInvalidatedAt: []store.LoanInvalidatedAt{{Loan: 1, Point: 1}},
	}
	s := newStore(t, f)

	res, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	errs := store.MustLoad[store.LoanError](s, store.RelErrors)
	require.Equal(t, []store.LoanError{{Loan: 1, Point: 1}}, errs.All())

	subsetErrs := store.MustLoad[store.SubsetError](s, store.RelSubsetErrors)
	require.True(t, subsetErrs.IsEmpty())
	moveErrs := store.MustLoad[store.MoveError](s, store.RelMoveErrors)
	require.True(t, moveErrs.IsEmpty())
}

// TestS2KilledLoanNoError is S1 with the loan killed before invalidation.
func TestS2KilledLoanNoError(t *testing.T) {
	f := &input.Facts{
		UniversalRegion:   []store.UniversalRegion{{Origin: 1}},
		CfgEdge:           []store.CfgEdge{{From: 0, To: 1}},
		LoanIssuedAt:      []store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}},
		LoanKilledAt:      []store.LoanKilledAt{{Loan: 1, Point: 0}},
		LoanInvalidatedAt: []store.LoanInvalidatedAt{{Loan: 1, Point: 1}},
	}
	s := newStore(t, f)

	_, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)

	errs := store.MustLoad[store.LoanError](s, store.RelErrors)
	require.True(t, errs.IsEmpty())
}

// TestS3UnjustifiedSubset mirrors S3: placeholder origin 1 stands for loan
// 10; placeholder origin 2 (distinct, with its own placeholder loan 20)
// ends up requiring origin 1's loan with nothing in
// known_placeholder_requires excusing it — an unjustified placeholder
// containment, reported as subset_errors(1, 2, p) at every point p where
// origin 2 contains the loan: 0, where it is issued, and 1, where origin 2
// is still live (it is universal) and carries the loan across the edge. This
// is per spec rule 4.12.13, a placeholder-level analog: both origins compared must
// themselves be placeholders (see spec.md's own worked example, S3, which
// declares `{('a, La), ('b, Lb)}` as the placeholder set).
func TestS3UnjustifiedSubset(t *testing.T) {
	f := &input.Facts{
		UniversalRegion: []store.UniversalRegion{{Origin: 1}, {Origin: 2}},
		CfgEdge:         []store.CfgEdge{{From: 0, To: 1}},
		Placeholder:     []store.Placeholder{{Origin: 1, Loan: 10}, {Origin: 2, Loan: 20}},
		LoanIssuedAt:    []store.LoanIssuedAt{{Origin: 2, Loan: 10, Point: 0}},
	}
	s := newStore(t, f)

	_, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)

	subsetErrs := store.MustLoad[store.SubsetError](s, store.RelSubsetErrors)
	require.Equal(t, []store.SubsetError{{Origin1: 1, Origin2: 2, Point: 0}, {Origin1: 1, Origin2: 2, Point: 1}}, subsetErrs.All())
}

// TestS4MoveError mirrors S4: a path moved then accessed across an edge
// with no intervening reassignment is a move error.
func TestS4MoveError(t *testing.T) {
	f := &input.Facts{
		CfgEdge:            []store.CfgEdge{{From: 0, To: 1}},
		PathMovedAtBase:    []store.PathMovedAtBase{{Path: 1, Point: 0}},
		PathAccessedAtBase: []store.PathAccessedAtBase{{Path: 1, Point: 1}},
	}
	s := newStore(t, f)

	_, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)

	moveErrs := store.MustLoad[store.MoveError](s, store.RelMoveErrors)
	require.Equal(t, []store.MoveError{{Path: 1, Point: 1}}, moveErrs.All())
}

// TestS5ChildPathPropagation mirrors S5: moving x also moves x.y, so
// accessing x.y after x was moved is a move error at the child path.
func TestS5ChildPathPropagation(t *testing.T) {
	f := &input.Facts{
		CfgEdge:            []store.CfgEdge{{From: 0, To: 1}},
		ChildPath:          []store.ChildPath{{Child: 2, Parent: 1}},
		PathMovedAtBase:    []store.PathMovedAtBase{{Path: 1, Point: 0}},
		PathAccessedAtBase: []store.PathAccessedAtBase{{Path: 2, Point: 1}},
	}
	s := newStore(t, f)

	_, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)

	moveErrs := store.MustLoad[store.MoveError](s, store.RelMoveErrors)
	require.Equal(t, []store.MoveError{{Path: 2, Point: 1}}, moveErrs.All())
}

func TestNaiveAndDatafrogOptAgreeViaCompare(t *testing.T) {
	f := &input.Facts{
		UniversalRegion:   []store.UniversalRegion{{Origin: 1}},
		CfgEdge:           []store.CfgEdge{{From: 0, To: 1}, {From: 1, To: 2}},
		LoanIssuedAt:      []store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}},
		LoanInvalidatedAt: []store.LoanInvalidatedAt{{Loan: 1, Point: 2}},
	}
	s := newStore(t, f)

	res, err := Run(context.Background(), Compare, s, RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, res.Compare)
	require.True(t, res.Compare.Agreed, res.Compare.Mismatch)
}

func TestHybridSkipsOptimizedPassWhenClean(t *testing.T) {
	f := &input.Facts{
		UniversalRegion: []store.UniversalRegion{{Origin: 1}},
		CfgEdge:         []store.CfgEdge{{From: 0, To: 1}},
	}
	s := newStore(t, f)

	res, err := Run(context.Background(), Hybrid, s, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, "location_insensitive", res.Report.Pipeline)

	errs := store.MustLoad[store.LoanError](s, store.RelErrors)
	require.True(t, errs.IsEmpty())
}

func TestHybridRunsOptimizedPassWhenDirty(t *testing.T) {
	// The location-insensitive pass erases points entirely for subset
	// errors, synthesizing point=0 when it promotes potential_subset_errors
	// into subset_errors. That non-empty result marks the run dirty, so
	// Hybrid reruns the location-sensitive pass for confirmation — whose
	// subset_errors carries the real point (5) the loan was issued at, not
	// the insensitive pass's synthesized 0.
	f := &input.Facts{
		UniversalRegion: []store.UniversalRegion{{Origin: 1}},
		CfgEdge:         []store.CfgEdge{{From: 0, To: 1}},
		Placeholder:     []store.Placeholder{{Origin: 1, Loan: 10}, {Origin: 2, Loan: 20}},
		LoanIssuedAt:    []store.LoanIssuedAt{{Origin: 2, Loan: 10, Point: 5}},
	}
	s := newStore(t, f)

	res, err := Run(context.Background(), Hybrid, s, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, "hybrid", res.Report.Pipeline)

	subsetErrs := store.MustLoad[store.SubsetError](s, store.RelSubsetErrors)
	require.Equal(t, []store.SubsetError{{Origin1: 1, Origin2: 2, Point: 5}}, subsetErrs.All())
}

// TestS6DropOfNeverInitializedVarIsNotLive mirrors S6: a variable dropped
// at a point with no path_assigned_at_base ever recorded for its path is
// never actually holding a value there, so the drop is not a "real" drop —
// it must not appear in var_dropped_while_init_at, and the origin its drop
// dereferences must not be spuriously pulled live by it.
func TestS6DropOfNeverInitializedVarIsNotLive(t *testing.T) {
	f := &input.Facts{
		CfgEdge:               []store.CfgEdge{{From: 0, To: 1}},
		PathIsVar:             []store.PathIsVar{{Path: 1, Var: 1}},
		VarDroppedAt:          []store.VarDroppedAt{{Var: 1, Point: 1}},
		DropOfVarDerefsOrigin: []store.DropOfVarDerefsOrigin{{Var: 1, Origin: 5}},
	}
	s := newStore(t, f)

	_, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)

	droppedWhileInit := store.MustLoad[store.VarDroppedWhileInitAt](s, store.RelVarDroppedWhileInitAt)
	require.True(t, droppedWhileInit.IsEmpty())

	live := store.MustLoad[store.OriginLiveOnEntry](s, store.RelOriginLiveOnEntry)
	require.False(t, live.Contains(store.OriginLiveOnEntry{Origin: 5, Point: 1}, store.LessOriginLiveOnEntry))
	require.True(t, live.IsEmpty())
}

func TestUniversalRegionLiveAtEveryCfgNode(t *testing.T) {
	f := &input.Facts{
		UniversalRegion: []store.UniversalRegion{{Origin: 1}},
		CfgEdge:         []store.CfgEdge{{From: 0, To: 1}, {From: 1, To: 2}},
	}
	s := newStore(t, f)

	_, err := Run(context.Background(), DatafrogOpt, s, RunOptions{})
	require.NoError(t, err)

	live := store.MustLoad[store.OriginLiveOnEntry](s, store.RelOriginLiveOnEntry)
	nodes := store.MustLoad[store.CfgNode](s, store.RelCfgNode)
	for _, n := range nodes.All() {
		require.True(t, live.Contains(store.OriginLiveOnEntry{Origin: 1, Point: n.Point}, store.LessOriginLiveOnEntry),
			"universal region must be live at point %d", n.Point)
	}
}

func TestUnknownAlgorithmErrors(t *testing.T) {
	s := store.New()
	_, err := Run(context.Background(), Algorithm("bogus"), s, RunOptions{})
	require.Error(t, err)
}

func TestDumpSinkDoesNotChangeOutputRelations(t *testing.T) {
	f := &input.Facts{
		UniversalRegion:   []store.UniversalRegion{{Origin: 1}},
		CfgEdge:           []store.CfgEdge{{From: 0, To: 1}},
		LoanIssuedAt:      []store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}},
		LoanInvalidatedAt: []store.LoanInvalidatedAt{{Loan: 1, Point: 1}},
	}

	s1 := newStore(t, f)
	_, err := Run(context.Background(), DatafrogOpt, s1, RunOptions{})
	require.NoError(t, err)
	withoutDump := store.MustLoad[store.LoanError](s1, store.RelErrors).All()

	s2 := newStore(t, f)
	_, err = Run(context.Background(), DatafrogOpt, s2, RunOptions{Dump: recordingSink{}})
	require.NoError(t, err)
	withDump := store.MustLoad[store.LoanError](s2, store.RelErrors).All()

	require.Equal(t, withoutDump, withDump)
}

type recordingSink struct{}

func (recordingSink) Render(s *store.FactStore) error {
	_ = s.Names()
	return nil
}
