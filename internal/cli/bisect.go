package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sysresolve/pkg/counter"
	"github.com/matzehuels/sysresolve/pkg/errors"
)

func (c *CLI) bisectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bisect",
		Short: "Read or set the bisection counter",
		Long: `While the bisection counter is positive, each resolution consumes one unit and
is served from the bisection repository. Setting the counter to N therefore
overrides the first N resolutions of a build.`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the counter value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCounter(func(ctr counter.Counter) error {
				v, err := ctr.Value(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set N",
		Short: "Set the counter value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "counter value %q", args[0])
			}
			return c.withCounter(func(ctr counter.Counter) error {
				if err := ctr.Set(cmd.Context(), n); err != nil {
					return err
				}
				printSuccess(cmd.ErrOrStderr(), "Bisection counter set to %d", n)
				return nil
			})
		},
	})
	return cmd
}

func (c *CLI) withCounter(fn func(counter.Counter) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.BisectCounter == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "bisection is not configured; set bisect_counter or SYSRESOLVE_BISECT_COUNTER")
	}
	ctr, err := counter.Open(cfg.BisectCounter)
	if err != nil {
		return err
	}
	if cl, ok := ctr.(io.Closer); ok {
		defer cl.Close()
	}
	return fn(ctr)
}
