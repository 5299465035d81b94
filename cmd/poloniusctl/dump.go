package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/polonius-rs/polonius-go/internal/dump"
	"github.com/polonius-rs/polonius-go/internal/input"
	"github.com/polonius-rs/polonius-go/internal/store"
	"github.com/polonius-rs/polonius-go/pkg/engine"
)

func newDumpCmd() *cobra.Command {
	var factsPath, algorithm string
	var relations []string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Run an algorithm and render every populated relation as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			alg := engine.Algorithm(algorithm)

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

			sink := dump.TableSink{W: cmd.OutOrStdout(), Only: relations}
			_, err = engine.Run(context.Background(), alg, s, engine.RunOptions{
				Logger: hclog.NewNullLogger(),
				Dump:   sink,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&factsPath, "facts", "", "path to a JSON facts document (required)")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(engine.DatafrogOpt), "naive|datafrog_opt|location_insensitive|hybrid|compare")
	cmd.Flags().StringSliceVar(&relations, "relation", nil, "restrict output to these relation names (repeatable); default is every populated relation")
	cmd.MarkFlagRequired("facts")
	return cmd
}
