package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sysresolve/internal/server"
	"github.com/matzehuels/sysresolve/pkg/config"
	"github.com/matzehuels/sysresolve/pkg/metrics"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(registry)
			m.Install()

			prog := newProgress(c.Logger)
			e, err := c.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			prog.done("resolver ready",
				"fragments", e.Stats.Depmap.Files,
				"mappings", e.Stats.Depmap.Mappings)

			if addr == "" {
				addr = e.Config.Server.Addr
			}
			srv := server.New(server.Options{
				Resolver: e,
				Graph:    e.Graph,
				Metrics:  m.Handler(),
				Logger:   c.Logger,
			})
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")

	return cmd
}
