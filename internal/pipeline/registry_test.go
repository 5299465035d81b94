package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

func baseStore(t *testing.T) *store.FactStore {
	t.Helper()
	s := store.New()
	s.SetCurrentUnit("fixture")
	require.NoError(t, store.Store(s, store.RelUniversalRegion, relation.Build([]store.UniversalRegion{{Origin: 1}}, store.LessUniversalRegion)))
	require.NoError(t, store.Store(s, store.RelCfgEdge, relation.Build([]store.CfgEdge{{From: 0, To: 1}}, store.LessCfgEdge)))
	require.NoError(t, store.Store(s, store.RelLoanIssuedAt, relation.Build([]store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}}, store.LessLoanIssuedAt)))
	require.NoError(t, store.Store(s, store.RelLoanInvalidatedAt, relation.Build([]store.LoanInvalidatedAt{{Loan: 1, Point: 1}}, store.LessLoanInvalidatedAt)))
	return s
}

func TestNaivePipelineValidates(t *testing.T) {
	require.NoError(t, Naive().Validate())
}

func TestDatafrogOptPipelineValidates(t *testing.T) {
	require.NoError(t, DatafrogOpt().Validate())
}

func TestLocationInsensitivePipelineValidates(t *testing.T) {
	require.NoError(t, LocationInsensitive().Validate())
}

func TestDatafrogOptReportsTheSimpleInvalidation(t *testing.T) {
	s := baseStore(t)
	report, err := Execute(context.Background(), DatafrogOpt(), s, nil)
	require.NoError(t, err)
	require.NotEmpty(t, report.Timings)

	errs := store.MustLoad[store.LoanError](s, store.RelErrors)
	require.Equal(t, []store.LoanError{{Loan: 1, Point: 1}}, errs.All())
}

func TestCompareAgreesOnASimpleInvalidation(t *testing.T) {
	s := baseStore(t)
	cr, naiveReport, optReport, err := Compare(context.Background(), s, nil)
	require.NoError(t, err)
	require.True(t, cr.Agreed, cr.Mismatch)
	require.NotEmpty(t, naiveReport.Timings)
	require.NotEmpty(t, optReport.Timings)
}

func TestCloneExternalInputsCopiesOnlyBaseFacts(t *testing.T) {
	s := baseStore(t)
	clone, err := CloneExternalInputs(s)
	require.NoError(t, err)

	edges := store.MustLoad[store.CfgEdge](clone, store.RelCfgEdge)
	require.Equal(t, []store.CfgEdge{{From: 0, To: 1}}, edges.All())
	require.False(t, clone.Has(store.RelErrors), "clone must not carry over derived relations")
}
