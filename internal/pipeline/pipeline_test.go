package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polonius-rs/polonius-go/internal/store"
)

type fakeUnit struct {
	name    string
	inputs  []string
	outputs []string
	run     func(*store.FactStore) error
}

func (f fakeUnit) Name() string      { return f.name }
func (f fakeUnit) Inputs() []string  { return f.inputs }
func (f fakeUnit) Outputs() []string { return f.outputs }
func (f fakeUnit) Run(_ context.Context, s *store.FactStore) error {
	if f.run == nil {
		return nil
	}
	return f.run(s)
}

func TestValidateAcceptsWellOrderedUnits(t *testing.T) {
	p := New("t", []string{"a"},
		fakeUnit{name: "u1", inputs: []string{"a"}, outputs: []string{"b"}},
		fakeUnit{name: "u2", inputs: []string{"b"}, outputs: []string{"c"}},
	)
	require.NoError(t, p.Validate())
}

func TestValidateRejectsMissingInput(t *testing.T) {
	p := New("t", []string{"a"},
		fakeUnit{name: "u1", inputs: []string{"b"}, outputs: []string{"c"}},
	)
	err := p.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "u1")
	require.Contains(t, err.Error(), "b")
}

func TestValidateRejectsOutOfOrderUnits(t *testing.T) {
	// u2 needs "c", which u1 only produces afterward in declared order —
	// Validate walks units in order, so a later producer does not count.
	p := New("t", nil,
		fakeUnit{name: "u2", inputs: []string{"c"}},
		fakeUnit{name: "u1", outputs: []string{"c"}},
	)
	require.Error(t, p.Validate())
}

func TestExecuteRunsUnitsInOrderAndRecordsTimings(t *testing.T) {
	var order []string
	p := New("t", []string{"a"},
		fakeUnit{name: "u1", inputs: []string{"a"}, outputs: []string{"b"}, run: func(s *store.FactStore) error {
			order = append(order, "u1")
			return nil
		}},
		fakeUnit{name: "u2", inputs: []string{"b"}, run: func(s *store.FactStore) error {
			order = append(order, "u2")
			return nil
		}},
	)
	s := store.New()
	report, err := Execute(context.Background(), p, s, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, order)
	require.Len(t, report.Timings, 2)
	require.Equal(t, "u1", report.Timings[0].Name)
	require.Equal(t, "u2", report.Timings[1].Name)
}

func TestExecuteStopsAtFirstError(t *testing.T) {
	var ran []string
	p := New("t", nil,
		fakeUnit{name: "u1", run: func(s *store.FactStore) error {
			ran = append(ran, "u1")
			return assertErr
		}},
		fakeUnit{name: "u2", run: func(s *store.FactStore) error {
			ran = append(ran, "u2")
			return nil
		}},
	)
	s := store.New()
	_, err := Execute(context.Background(), p, s, nil)
	require.Error(t, err)
	require.Equal(t, []string{"u1"}, ran)
}

var assertErr = errNotNil{}

type errNotNil struct{}

func (errNotNil) Error() string { return "boom" }
