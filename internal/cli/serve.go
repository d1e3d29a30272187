package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/causeway/pkg/api"
	"github.com/matzehuels/causeway/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		modelsDir string
		noCache   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Long: `Serve impact, identify, counterfactual, doors, dsep and render queries as JSON
over HTTP. Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			srv := c.cfg.Server
			if addr != "" {
				srv.Addr = addr
			}
			if modelsDir != "" {
				srv.ModelsDir = modelsDir
			}

			metrics := observability.NewMetrics()
			observability.Register(metrics)
			defer observability.Reset()

			r := c.newRunner(ctx, noCache)
			defer r.Close()

			s := api.New(r, api.Options{
				MaxBodyBytes: srv.MaxBodyBytes,
				ModelsDir:    srv.ModelsDir,
				Metrics:      metrics.Handler(),
			})
			return s.ListenAndServe(ctx, srv.Addr, srv.ReadTimeout.Duration, srv.WriteTimeout.Duration)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&modelsDir, "models-dir", "", "directory of models addressable by name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}
