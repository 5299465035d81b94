package oracle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/input"
	"github.com/polonius-rs/polonius-go/internal/oracle"
	"github.com/polonius-rs/polonius-go/internal/store"
	"github.com/polonius-rs/polonius-go/pkg/engine"
)

// TestReachabilityAgreesWithEngineOnALinearChain cross-checks the oracle's
// pure-Prolog reachable/2 against the engine's own forward-edge CFG
// traversal: a loan issued at the chain's start and invalidated at an
// interior point must be flagged an error by the engine exactly when the
// oracle independently agrees that point is reachable.
func TestReachabilityAgreesWithEngineOnALinearChain(t *testing.T) {
	edges := []store.CfgEdge{{From: 0, To: 1}, {From: 1, To: 2}}

	k := oracle.New()
	require.NoError(t, k.LoadCFG(context.Background(), edges))

	reachable, err := k.Reachable(context.Background(), 0, 2)
	require.NoError(t, err)
	require.True(t, reachable)

	f := &input.Facts{
		UniversalRegion:   []store.UniversalRegion{{Origin: 1}},
		CfgEdge:           edges,
		LoanIssuedAt:      []store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}},
		LoanInvalidatedAt: []store.LoanInvalidatedAt{{Loan: 1, Point: 2}},
	}
	s := store.New()
	require.NoError(t, f.Populate(s))
	_, err = engine.Run(context.Background(), engine.DatafrogOpt, s, engine.RunOptions{})
	require.NoError(t, err)

	errs := store.MustLoad[store.LoanError](s, store.RelErrors)
	require.Equal(t, reachable, !errs.IsEmpty(),
		"engine's error result must agree with the oracle's independent reachability verdict")
}

// TestUnreachablePredecessorIsNotFlagged mirrors the negative case: edges
// are directed, so a predecessor point can never be reached moving forward
// from its successor — the same direction the engine's forwardEdgeIndex
// walks when transporting a loan across an edge.
func TestUnreachablePredecessorIsNotFlagged(t *testing.T) {
	edges := []store.CfgEdge{{From: 0, To: 1}}

	k := oracle.New()
	require.NoError(t, k.LoadCFG(context.Background(), edges))

	reachable, err := k.Reachable(context.Background(), 1, 0)
	require.NoError(t, err)
	require.False(t, reachable)
}

// TestSubsetHoldsAgreesWithLocationInsensitivePlaceholderCheck cross-checks
// the oracle's subset_holds/3 against the same point-erased containment the
// location-insensitive pass computes: origin 1 reaches origin 3 at point 0
// via a two-hop subset chain, so a placeholder loan on origin 1 ends up
// contained by origin 3 too.
func TestSubsetHoldsAgreesWithLocationInsensitivePlaceholderCheck(t *testing.T) {
	base := []store.SubsetBase{
		{Origin1: 1, Origin2: 2, Point: 0},
		{Origin1: 2, Origin2: 3, Point: 0},
	}

	k := oracle.New()
	require.NoError(t, k.LoadSubset(context.Background(), base))

	holds, err := k.SubsetHolds(context.Background(), 1, 3, 0)
	require.NoError(t, err)
	require.True(t, holds)

	f := &input.Facts{
		Placeholder:     []store.Placeholder{{Origin: 1, Loan: 10}, {Origin: 3, Loan: 30}},
		SubsetBase:      base,
		UniversalRegion: []store.UniversalRegion{{Origin: 1}, {Origin: 2}, {Origin: 3}},
	}
	s := store.New()
	require.NoError(t, f.Populate(s))
	_, err = engine.Run(context.Background(), engine.LocationInsensitive, s, engine.RunOptions{})
	require.NoError(t, err)

	subsetErrs := store.MustLoad[store.SubsetError](s, store.RelSubsetErrors)
	var found bool
	for _, se := range subsetErrs.All() {
		if se.Origin1 == 1 && se.Origin2 == 3 {
			found = true
		}
	}
	require.True(t, found, "origin 3 containing placeholder 1's loan via subset must surface as a subset error, matching the oracle's independent closure")
}
