package dump

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

func TestTableSinkRendersOnlyPopulatedRelations(t *testing.T) {
	s := store.New()
	s.SetCurrentUnit("u")
	require.NoError(t, store.Store(s, store.RelCfgEdge,
		relation.Build([]store.CfgEdge{{From: 0, To: 1}}, store.LessCfgEdge)))

	var buf bytes.Buffer
	sink := TableSink{W: &buf}
	require.NoError(t, sink.Render(s))

	out := buf.String()
	require.Contains(t, out, store.RelCfgEdge)
	require.Contains(t, out, "(1 tuples)")
	// Never-written relations are skipped silently, not rendered as empty.
	require.NotContains(t, out, store.RelLoanIssuedAt)
}

func TestTableSinkOnlyFilterRestrictsOutput(t *testing.T) {
	s := store.New()
	s.SetCurrentUnit("u")
	require.NoError(t, store.Store(s, store.RelCfgEdge,
		relation.Build([]store.CfgEdge{{From: 0, To: 1}}, store.LessCfgEdge)))
	require.NoError(t, store.Store(s, store.RelUniversalRegion,
		relation.Build([]store.UniversalRegion{{Origin: 1}}, store.LessUniversalRegion)))

	var buf bytes.Buffer
	sink := TableSink{W: &buf, Only: []string{store.RelCfgEdge}}
	require.NoError(t, sink.Render(s))

	out := buf.String()
	require.Contains(t, out, store.RelCfgEdge)
	require.NotContains(t, out, store.RelUniversalRegion)
}

func TestNopSinkRendersNothing(t *testing.T) {
	require.NoError(t, Nop{}.Render(store.New()))
}
