package dump

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/polonius-rs/polonius-go/internal/store"
)

// TableSink renders every populated relation as a table to W, one per
// relation, skipping anything the store never wrote. Relation names are
// printed in bold via fatih/color, which decides whether to emit color from
// stdout and the environment, not from W; tablewriter does the actual column
// layout.
type TableSink struct {
	W io.Writer

	// Only, if non-empty, restricts rendering to these relation names
	// instead of the full schema; used by poloniusctl dump --relation.
	Only []string
}

func (t TableSink) Render(s *store.FactStore) error {
	heading := color.New(color.Bold, color.FgCyan)

	names := t.Only
	if len(names) == 0 {
		names = relationNames
	}

	for _, name := range names {
		header, rows, ok := s.Rows(name)
		if !ok {
			continue
		}

		heading.Fprintf(t.W, "\n%s", name)
		fmt.Fprintf(t.W, " (%d tuples)\n", len(rows))

		table := tablewriter.NewTable(t.W)
		table.Header(header)
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return fmt.Errorf("dump: relation %q: %w", name, err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("dump: relation %q: %w", name, err)
		}
	}
	return nil
}
