package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sysresolve/pkg/depmap"
	"github.com/matzehuels/sysresolve/pkg/errors"
)

// Graph output formats.
const (
	formatDOT   = "dot"
	formatSVG   = "svg"
	formatEdges = "edges"
)

func (c *CLI) depmapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depmap",
		Short: "Inspect the loaded artifact mappings",
	}
	cmd.AddCommand(c.depmapGraphCommand())
	cmd.AddCommand(c.depmapStatsCommand())
	return cmd
}

func (c *CLI) depmapGraphCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the mapping graph",
		Example: `  sysresolve depmap graph --format dot | dot -Tpng > depmap.png
  sysresolve depmap graph --format svg -o depmap.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case formatEdges:
				for _, edge := range e.Graph.Edges() {
					line := fmt.Sprintf("%s -> %s", edge.From, edge.To)
					if edge.Namespace != "" {
						line += " [" + edge.Namespace + "]"
					}
					data = append(data, line+"\n"...)
				}
			case formatDOT:
				data = []byte(e.Graph.ToDOT())
			case formatSVG:
				if data, err = depmap.RenderSVG(cmd.Context(), e.Graph.ToDOT()); err != nil {
					return err
				}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want %s, %s or %s)", format, formatDOT, formatSVG, formatEdges)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
			if output != "" {
				printSuccess(cmd.ErrOrStderr(), "Wrote %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format (dot, svg, edges)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (c *CLI) depmapStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the mapping metadata that was loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			stats := e.Stats.Depmap

			printTitle(out, "Dependency map")
			for _, dir := range e.Config.MetadataDirs() {
				printDetail(out, "%s", dir)
			}
			printKeyValue(out, "fragments", StyleNumber.Render(fmt.Sprint(stats.Files)))
			printKeyValue(out, "failed", StyleNumber.Render(fmt.Sprint(stats.Failed)))
			printKeyValue(out, "mappings", StyleNumber.Render(fmt.Sprint(stats.Mappings)))
			printKeyValue(out, "edges", StyleNumber.Render(fmt.Sprint(e.Graph.Len())))
			printKeyValue(out, "blacklisted", StyleNumber.Render(fmt.Sprint(len(e.Blacklist.Entries()))))
			printKeyValue(out, "load time", e.Stats.LoadTime.String())
			return nil
		},
	}
}
