package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/store"
)

const sample = `{
	"universal_region": [{"Origin": 1}],
	"cfg_edge": [{"From": 0, "To": 1}],
	"loan_issued_at": [{"Origin": 1, "Loan": 1, "Point": 0}]
}`

func TestLoadDecodesNamedRelations(t *testing.T) {
	f, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, []store.UniversalRegion{{Origin: 1}}, f.UniversalRegion)
	require.Equal(t, []store.CfgEdge{{From: 0, To: 1}}, f.CfgEdge)
	require.Equal(t, []store.LoanIssuedAt{{Origin: 1, Loan: 1, Point: 0}}, f.LoanIssuedAt)
	require.Empty(t, f.SubsetBase)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{not json`))
	require.Error(t, err)
}

func TestPopulateWritesEveryRelation(t *testing.T) {
	f, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	s := store.New()
	require.NoError(t, f.Populate(s))

	require.True(t, s.Has(store.RelUniversalRegion))
	require.True(t, s.Has(store.RelCfgEdge))
	require.True(t, s.Has(store.RelLoanIssuedAt))
	// Relations absent from the document are still stored, just empty.
	require.True(t, s.Has(store.RelSubsetBase))
	empty := store.MustLoad[store.SubsetBase](s, store.RelSubsetBase)
	require.True(t, empty.IsEmpty())
}

func TestPopulateTwiceWithSameFactsSucceeds(t *testing.T) {
	f, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	s := store.New()
	require.NoError(t, f.Populate(s))
	require.NoError(t, f.Populate(s), "re-populating with identical facts must not conflict")
}
