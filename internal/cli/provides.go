package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (c *CLI) providesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "provides PATH...",
		Short: "Print the system package owning each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := c.provenanceIndex()

			stderr := cmd.ErrOrStderr()
			var spin *Spinner
			if isTerminal(stderr) {
				spin = newSpinner(cmd.Context(), stderr, "Indexing installed packages")
				spin.Start()
			}
			prog := newProgress(c.Logger)
			n := index.Len(cmd.Context())
			if spin != nil {
				if index.Err() != nil {
					spin.StopWithError("package database unavailable")
				} else {
					spin.Stop()
				}
			}
			if index.Err() != nil {
				c.Logger.Warn("package database unavailable", "err", index.Err())
			} else {
				prog.done("indexed installed files", "files", n)
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				if pkg, ok := index.Lookup(cmd.Context(), path); ok {
					fmt.Fprintf(out, "%s: %s\n", arg, pkg)
					continue
				}
				printWarning(stderr, "%s is not owned by any package", arg)
			}
			return nil
		},
	}
}
