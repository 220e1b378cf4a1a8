package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/errors"
	"github.com/matzehuels/sysresolve/pkg/layout"
)

func (c *CLI) translateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "translate COORDINATE",
		Short: "List the coordinates an artifact maps to, most specific first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printGraphQuery(cmd, args[0], false)
		},
	}
}

func (c *CLI) relativesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relatives COORDINATE",
		Short: "List every coordinate that may refer to the same artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printGraphQuery(cmd, args[0], true)
		},
	}
}

func (c *CLI) printGraphQuery(cmd *cobra.Command, arg string, relatives bool) error {
	a, err := artifact.ParseAny(arg)
	if err != nil {
		return err
	}
	e, err := c.loadEngine(cmd.Context())
	if err != nil {
		return err
	}

	coords := e.Graph.Translate(a)
	if relatives {
		coords = e.Graph.RelativesOf(a)
	}
	for _, r := range coords {
		fmt.Fprintln(cmd.OutOrStdout(), r)
	}
	return nil
}

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		name        string
		versionless bool
	)

	cmd := &cobra.Command{
		Use:   "layout COORDINATE",
		Short: "Print the relative path of an artifact in a repository layout",
		Example: `  sysresolve layout --layout jpp JPP/maven:maven-core:3.0
  sysresolve layout --layout flat --versionless junit:junit:pom:4.12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := layout.Parse(name)
			if err != nil {
				return err
			}
			a, err := artifact.ParseAny(args[0])
			if err != nil {
				return err
			}
			p, ok := l.Path(a, !versionless)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "layout %s has no versionless paths", l)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "layout", "l", layout.JPP.String(), "layout name ("+strings.Join(layout.Names(), ", ")+")")
	cmd.Flags().BoolVar(&versionless, "versionless", false, "print the versionless path")
	_ = cmd.RegisterFlagCompletionFunc("layout", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return layout.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
