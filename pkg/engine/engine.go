// Package engine is the public entry point: select an analysis, point it at
// a populated fact store, and get back the output relations plus a timing
// report.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/polonius-rs/polonius-go/internal/dump"
	"github.com/polonius-rs/polonius-go/internal/pipeline"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// Algorithm selects which pipeline Run drives the store through.
type Algorithm string

const (
	Naive               Algorithm = "naive"
	DatafrogOpt         Algorithm = "datafrog_opt"
	LocationInsensitive Algorithm = "location_insensitive"
	Hybrid              Algorithm = "hybrid"
	Compare             Algorithm = "compare"
)

// RunOptions configures a Run call.
type RunOptions struct {
	// Logger receives per-unit start/finish/timing diagnostics. A nil
	// Logger runs silently.
	Logger hclog.Logger
	// Dump, if non-nil, is handed the store after the run completes so it
	// can render whichever relations it cares about. Supplying or omitting
	// a sink never changes which relations are populated.
	Dump dump.Sink
}

// Result is what Run hands back: the pipeline report(s) that executed, and,
// for Compare, whether the two variants agreed.
type Result struct {
	RunID                  string
	Report                 pipeline.Report
	Compare                *pipeline.CompareResult
	NaiveReport, OptReport pipeline.Report
}

// Run drives s through the pipeline selected by alg. s must already contain
// every relation that pipeline's Validate expects as an external input; see
// the store.Rel* constants for the full base-fact schema.
//
// Every call is tagged with a fresh run ID, attached to every log line for
// this run and returned on Result, so that interleaved log lines from
// concurrent runs (parallel tests, or multiple poloniusctl invocations) can
// be told apart. Dump sinks are not given the run ID.
func Run(ctx context.Context, alg Algorithm, s *store.FactStore, opts RunOptions) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	runID := uuid.New().String()
	log = log.With("run_id", runID)

	switch alg {
	case Naive:
		r, err := pipeline.Execute(ctx, pipeline.Naive(), s, log)
		return finish(Result{RunID: runID, Report: r}, s, opts, err)
	case DatafrogOpt:
		r, err := pipeline.Execute(ctx, pipeline.DatafrogOpt(), s, log)
		return finish(Result{RunID: runID, Report: r}, s, opts, err)
	case LocationInsensitive:
		r, err := pipeline.Execute(ctx, pipeline.LocationInsensitive(), s, log)
		return finish(Result{RunID: runID, Report: r}, s, opts, err)
	case Hybrid:
		return runHybrid(ctx, runID, s, log, opts)
	case Compare:
		cr, naiveReport, optReport, err := pipeline.Compare(ctx, s, log)
		res := Result{RunID: runID, Report: optReport, Compare: &cr, NaiveReport: naiveReport, OptReport: optReport}
		if err == nil && !cr.Agreed {
			err = fmt.Errorf("compare: naive and datafrog_opt disagree:\n%s", cr.Mismatch)
		}
		return finish(res, s, opts, err)
	default:
		return Result{RunID: runID}, fmt.Errorf("engine: unknown algorithm %q", alg)
	}
}

// runHybrid runs the location-insensitive pass first; if it reports no
// potential errors at all, that is proof the program borrow-checks cleanly
// (it is a strict overapproximation), so the expensive optimized pass is
// skipped. Otherwise the optimized pass runs, against a fresh clone of the
// base facts, for full precision, and its results supersede the
// insensitive pass's lossy point=0 approximation in s.
//
// The optimized pass runs against a clone rather than s directly because s
// already holds the insensitive pass's errors/subset_errors (and the common
// units' derived relations); the optimized pass would recompute the common
// units identically (fine, Store accepts an equal rewrite) but produce
// different errors/subset_errors tuples (real points, not the insensitive
// adapter's synthesized zero), which Store would reject as a conflict. The
// clone sidesteps that, and Overwrite then lets the confirmed, precise
// result replace the approximation in s.
func runHybrid(ctx context.Context, runID string, s *store.FactStore, log hclog.Logger, opts RunOptions) (Result, error) {
	insensitive := pipeline.LocationInsensitive()
	insensitiveReport, err := pipeline.Execute(ctx, insensitive, s, log)
	if err != nil {
		return finish(Result{RunID: runID, Report: insensitiveReport}, s, opts, err)
	}

	errs, _ := store.Load[store.LoanError](s, store.RelErrors)
	subsetErrs, _ := store.Load[store.SubsetError](s, store.RelSubsetErrors)
	if (errs == nil || errs.IsEmpty()) && (subsetErrs == nil || subsetErrs.IsEmpty()) {
		log.Info("hybrid: location-insensitive pass found nothing, skipping optimized pass")
		return finish(Result{RunID: runID, Report: insensitiveReport}, s, opts, nil)
	}

	log.Info("hybrid: location-insensitive pass found potential errors, running optimized pass for confirmation")
	optStore, err := pipeline.CloneExternalInputs(s)
	if err != nil {
		return finish(Result{RunID: runID, Report: insensitiveReport}, s, opts, err)
	}
	optimized := pipeline.DatafrogOpt()
	optReport, err := pipeline.Execute(ctx, optimized, optStore, log)
	if err != nil {
		return finish(Result{RunID: runID, Report: insensitiveReport}, s, opts, err)
	}

	s.SetCurrentUnit("hybrid_confirm")
	store.Overwrite(s, store.RelErrors, store.MustLoad[store.LoanError](optStore, store.RelErrors))
	store.Overwrite(s, store.RelSubsetErrors, store.MustLoad[store.SubsetError](optStore, store.RelSubsetErrors))
	store.Overwrite(s, store.RelLoanLiveAt, store.MustLoad[store.LoanLiveAt](optStore, store.RelLoanLiveAt))
	store.Overwrite(s, store.RelSubsetAt, store.MustLoad[store.SubsetAt](optStore, store.RelSubsetAt))
	store.Overwrite(s, store.RelOriginContainsLoanAt, store.MustLoad[store.OriginContainsLoanAt](optStore, store.RelOriginContainsLoanAt))
	store.Overwrite(s, store.RelSymmetryRemoved, store.MustLoad[store.SymmetryRemoved](optStore, store.RelSymmetryRemoved))

	combined := pipeline.Report{Pipeline: "hybrid", Timings: append(append([]pipeline.UnitTiming{}, insensitiveReport.Timings...), optReport.Timings...)}
	return finish(Result{RunID: runID, Report: combined}, s, opts, nil)
}

func finish(res Result, s *store.FactStore, opts RunOptions, err error) (Result, error) {
	if opts.Dump != nil {
		if dumpErr := opts.Dump.Render(s); dumpErr != nil && err == nil {
			err = fmt.Errorf("dump: %w", dumpErr)
		}
	}
	return res, err
}
