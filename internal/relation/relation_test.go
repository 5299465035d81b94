package relation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lessInt(a, b int) bool { return a < b }

func TestBuildSortsAndDedups(t *testing.T) {
	r := Build([]int{3, 1, 2, 1, 3}, lessInt)
	require.Equal(t, []int{1, 2, 3}, r.All())
	require.Equal(t, 3, r.Len())
}

func TestEmpty(t *testing.T) {
	r := Empty[int]()
	require.True(t, r.IsEmpty())
	require.Equal(t, 0, r.Len())
}

func TestContains(t *testing.T) {
	r := Build([]int{5, 1, 3}, lessInt)
	require.True(t, r.Contains(3, lessInt))
	require.False(t, r.Contains(4, lessInt))
}

func TestEqual(t *testing.T) {
	a := Build([]int{1, 2, 3}, lessInt)
	b := Build([]int{3, 2, 1, 2}, lessInt)
	require.True(t, Equal(a, b))

	c := Build([]int{1, 2, 4}, lessInt)
	require.False(t, Equal(a, c))
}

func TestProject(t *testing.T) {
	r := Build([]int{1, 2, 3, 4}, lessInt)
	doubled := Project(r, lessInt, func(x int) int { return x * 2 })
	require.Equal(t, []int{2, 4, 6, 8}, doubled.All())
}

func TestIndex(t *testing.T) {
	idx := BuildIndex([]int{1, 2, 3, 4, 5}, func(x int) int { return x % 2 })
	require.ElementsMatch(t, []int{1, 3, 5}, idx.Get(1))
	require.ElementsMatch(t, []int{2, 4}, idx.Get(0))
	require.Nil(t, idx.Get(7))
}
