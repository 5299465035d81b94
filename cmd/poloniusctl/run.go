package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/polonius-rs/polonius-go/internal/input"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
	"github.com/polonius-rs/polonius-go/pkg/engine"
)

func newRunCmd() *cobra.Command {
	var factsPath, algorithm string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a borrow-check algorithm over a facts document",
		RunE: func(cmd *cobra.Command, args []string) error {
			alg := engine.Algorithm(algorithm)
			switch alg {
			case engine.Naive, engine.DatafrogOpt, engine.LocationInsensitive, engine.Hybrid, engine.Compare:
			default:
				return fmt.Errorf("unknown --algorithm %q", algorithm)
			}

			f, err := os.Open(factsPath)
			if err != nil {
				return fmt.Errorf("open facts: %w", err)
			}
			defer f.Close()

			facts, err := input.Load(f)
			if err != nil {
				return err
			}
			s := store.New()
			if err := facts.Populate(s); err != nil {
				return fmt.Errorf("populate facts: %w", err)
			}

			level := hclog.Info
			if verbose {
				level = hclog.Debug
			}
			log := hclog.New(&hclog.LoggerOptions{Name: "poloniusctl", Level: level})

			res, err := engine.Run(context.Background(), alg, s, engine.RunOptions{Logger: log})
			if err != nil {
				return err
			}

			printSummary(cmd, res, s, verbose)
			return nil
		},
	}

	cmd.Flags().StringVar(&factsPath, "facts", "", "path to a JSON facts document (required)")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(engine.Hybrid), "naive|datafrog_opt|location_insensitive|hybrid|compare")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log and print per-unit timing")
	cmd.MarkFlagRequired("facts")
	return cmd
}

func printSummary(cmd *cobra.Command, res engine.Result, s *store.FactStore, verbose bool) {
	bold := color.New(color.Bold)
	bold.Fprintf(cmd.OutOrStdout(), "run %s (%s)\n", res.RunID, res.Report.Pipeline)

	errs, _ := store.Load[store.LoanError](s, store.RelErrors)
	subsetErrs, _ := store.Load[store.SubsetError](s, store.RelSubsetErrors)
	moveErrs, _ := store.Load[store.MoveError](s, store.RelMoveErrors)

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	report := func(label string, n int) {
		if n == 0 {
			green.Fprintf(cmd.OutOrStdout(), "  %s: none\n", label)
			return
		}
		red.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", label, n)
	}
	report("errors", relLen(errs))
	report("subset_errors", relLen(subsetErrs))
	report("move_errors", relLen(moveErrs))

	if res.Compare != nil {
		if res.Compare.Agreed {
			green.Fprintln(cmd.OutOrStdout(), "  naive and datafrog_opt agree")
		} else {
			red.Fprintf(cmd.OutOrStdout(), "  naive and datafrog_opt DISAGREE:\n%s\n", res.Compare.Mismatch)
		}
	}

	if !verbose {
		return
	}
	for _, t := range res.Report.Timings {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %s\n", t.Name, t.Elapsed)
	}
}

// relLen reports a relation's tuple count, tolerating a nil relation for a
// name that was never populated.
func relLen[T comparable](r *relation.Relation[T]) int {
	if r == nil {
		return 0
	}
	return r.Len()
}
