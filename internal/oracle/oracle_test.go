package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/store"
)

func TestReachableFollowsMultipleHops(t *testing.T) {
	ctx := context.Background()
	k := New()
	require.NoError(t, k.LoadCFG(ctx, []store.CfgEdge{
		{From: 0, To: 1},
		{From: 1, To: 2},
		{From: 2, To: 3},
	}))

	ok, err := k.Reachable(ctx, atom.Point(0), atom.Point(3))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = k.Reachable(ctx, atom.Point(3), atom.Point(0))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = k.Reachable(ctx, atom.Point(1), atom.Point(1))
	require.NoError(t, err)
	require.True(t, ok, "reachable/2 includes the zero-hop case")
}

func TestReachableStopsAtBranchNotTaken(t *testing.T) {
	ctx := context.Background()
	k := New()
	require.NoError(t, k.LoadCFG(ctx, []store.CfgEdge{
		{From: 0, To: 1},
		{From: 0, To: 2},
	}))

	ok, err := k.Reachable(ctx, atom.Point(1), atom.Point(2))
	require.NoError(t, err)
	require.False(t, ok, "1 and 2 are sibling successors of 0, neither reaches the other")
}

func TestSubsetHoldsIsTransitiveWithinAPoint(t *testing.T) {
	ctx := context.Background()
	k := New()
	require.NoError(t, k.LoadSubset(ctx, []store.SubsetBase{
		{Origin1: 0, Origin2: 1, Point: 5},
		{Origin1: 1, Origin2: 2, Point: 5},
	}))

	ok, err := k.SubsetHolds(ctx, atom.Origin(0), atom.Origin(2), atom.Point(5))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = k.SubsetHolds(ctx, atom.Origin(0), atom.Origin(2), atom.Point(6))
	require.NoError(t, err)
	require.False(t, ok, "the same subset chain at a different point was never asserted")
}

func TestSubsetHoldsReflexive(t *testing.T) {
	ctx := context.Background()
	k := New()
	ok, err := k.SubsetHolds(context.Background(), atom.Origin(4), atom.Origin(4), atom.Point(0))
	require.NoError(t, err)
	require.True(t, ok)
}
