// Package pipeline sequences computation units over a fact store and drives
// each to completion, validating the dependency order up front the way the
// engine's design requires: a unit may not run until every relation it reads
// is either supplied as an external input or already produced by an earlier
// unit in the same pipeline.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/polonius-rs/polonius-go/internal/store"
)

// Unit is one computation step: it declares the relations it reads and
// writes by name, and computes the latter from the former against a shared
// FactStore. Implementations live in internal/units.
type Unit interface {
	Name() string
	Inputs() []string
	Outputs() []string
	Run(ctx context.Context, s *store.FactStore) error
}

// UnitTiming records how long one unit took during a single Execute call.
type UnitTiming struct {
	Name    string
	Elapsed time.Duration
}

// Report summarizes one Execute call: every unit that ran, in order, and how
// long each took. poloniusctl's --verbose flag prints this.
type Report struct {
	Pipeline string
	Timings  []UnitTiming
}

// Total returns the sum of every unit's elapsed time.
func (r Report) Total() time.Duration {
	var total time.Duration
	for _, t := range r.Timings {
		total += t.Elapsed
	}
	return total
}

// Pipeline is an ordered sequence of units plus the set of relation names
// the caller promises to have already populated in the store (the base
// facts: loan_issued_at, cfg_edge, and the rest of the input schema) before
// Execute runs.
type Pipeline struct {
	name     string
	units    []Unit
	external map[string]bool
}

// New builds a named pipeline over units, run in the given order. external
// lists relation names the caller populates directly rather than any unit
// producing them.
func New(name string, external []string, units ...Unit) *Pipeline {
	ext := make(map[string]bool, len(external))
	for _, n := range external {
		ext[n] = true
	}
	return &Pipeline{name: name, units: units, external: ext}
}

// Name returns the pipeline's diagnostic name.
func (p *Pipeline) Name() string { return p.name }

// Validate checks that every unit's inputs are available by the time it
// runs: either an external input, or an output of some earlier unit. It
// does not touch the store; it is a pure check of the declared wiring.
func (p *Pipeline) Validate() error {
	available := make(map[string]bool, len(p.external))
	for n := range p.external {
		available[n] = true
	}
	for _, u := range p.units {
		for _, in := range u.Inputs() {
			if !available[in] {
				return fmt.Errorf("pipeline %q: unit %q requires relation %q, which is neither an external input nor produced by an earlier unit", p.name, u.Name(), in)
			}
		}
		for _, out := range u.Outputs() {
			available[out] = true
		}
	}
	return nil
}

// Execute runs Validate, then every unit in order against s, logging each
// unit's start, completion, and elapsed time through log (a nil log is
// treated as hclog.NewNullLogger()). It stops at the first unit error.
func Execute(ctx context.Context, p *Pipeline, s *store.FactStore, log hclog.Logger) (Report, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if err := p.Validate(); err != nil {
		return Report{Pipeline: p.name}, err
	}

	report := Report{Pipeline: p.name, Timings: make([]UnitTiming, 0, len(p.units))}
	for _, u := range p.units {
		s.SetCurrentUnit(u.Name())
		log.Debug("unit starting", "pipeline", p.name, "unit", u.Name())

		start := time.Now()
		err := u.Run(ctx, s)
		elapsed := time.Since(start)
		report.Timings = append(report.Timings, UnitTiming{Name: u.Name(), Elapsed: elapsed})

		if err != nil {
			log.Error("unit failed", "pipeline", p.name, "unit", u.Name(), "elapsed", elapsed, "error", err)
			return report, fmt.Errorf("pipeline %q: unit %q: %w", p.name, u.Name(), err)
		}
		log.Debug("unit finished", "pipeline", p.name, "unit", u.Name(), "elapsed", elapsed)
	}
	return report, nil
}
