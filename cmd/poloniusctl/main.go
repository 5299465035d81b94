// Command poloniusctl drives the fact engine from the command line: load a
// JSON facts document, run one of the borrow-check algorithms over it, and
// print (or dump) the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "poloniusctl",
		Short: "Run the polonius-go borrow-check fact engine",
	}
	root.AddCommand(newRunCmd(), newDumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
