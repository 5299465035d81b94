package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/relation"
)

func TestStoreFirstWriteSucceeds(t *testing.T) {
	s := New()
	s.SetCurrentUnit("u1")
	rel := relation.Build([]LoanError{{Loan: 1, Point: 2}}, LessLoanError)
	require.NoError(t, Store(s, RelErrors, rel))
	require.True(t, s.Has(RelErrors))
}

func TestStoreEqualRewriteSucceeds(t *testing.T) {
	s := New()
	s.SetCurrentUnit("u1")
	rel := relation.Build([]LoanError{{Loan: 1, Point: 2}}, LessLoanError)
	require.NoError(t, Store(s, RelErrors, rel))

	s.SetCurrentUnit("u2")
	same := relation.Build([]LoanError{{Loan: 1, Point: 2}}, LessLoanError)
	require.NoError(t, Store(s, RelErrors, same), "an equal rewrite by a different unit must not conflict")
}

func TestStoreConflictingRewriteFails(t *testing.T) {
	s := New()
	s.SetCurrentUnit("u1")
	require.NoError(t, Store(s, RelErrors, relation.Build([]LoanError{{Loan: 1, Point: 2}}, LessLoanError)))

	s.SetCurrentUnit("u2")
	err := Store(s, RelErrors, relation.Build([]LoanError{{Loan: 9, Point: 9}}, LessLoanError))
	require.Error(t, err)
	require.Contains(t, err.Error(), "u1")
	require.Contains(t, err.Error(), "u2")
	// The conflict message carries a go-cmp structural diff of the two
	// conflicting tuple slices, not just a flat "they differ" message.
	require.Contains(t, err.Error(), "-want +got")
	require.Contains(t, err.Error(), "Loan")
}

func TestMustLoadDefaultsToEmpty(t *testing.T) {
	s := New()
	rel := MustLoad[LoanError](s, RelErrors)
	require.NotNil(t, rel)
	require.True(t, rel.IsEmpty())
}

func TestOverwriteBypassesConflictCheck(t *testing.T) {
	s := New()
	s.SetCurrentUnit("insensitive")
	require.NoError(t, Store(s, RelErrors, relation.Build([]LoanError{{Loan: 1, Point: 0}}, LessLoanError)))

	s.SetCurrentUnit("hybrid_confirm")
	Overwrite(s, RelErrors, relation.Build([]LoanError{{Loan: 1, Point: 7}}, LessLoanError))

	got := MustLoad[LoanError](s, RelErrors)
	require.Equal(t, []LoanError{{Loan: 1, Point: 7}}, got.All())
}

func TestRowsRendersTupleFieldsGenerically(t *testing.T) {
	s := New()
	s.SetCurrentUnit("u")
	require.NoError(t, Store(s, RelCfgEdge, relation.Build([]CfgEdge{{From: atom.Point(1), To: atom.Point(2)}}, LessCfgEdge)))

	header, rows, ok := s.Rows(RelCfgEdge)
	require.True(t, ok)
	require.Equal(t, []string{"From", "To"}, header)
	require.Equal(t, [][]string{{"1", "2"}}, rows)

	_, _, ok = s.Rows("nonexistent")
	require.False(t, ok)
}
