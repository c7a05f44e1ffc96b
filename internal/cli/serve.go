package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdatlas/internal/server"
	"github.com/matzehuels/psdatlas/pkg/observability"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /healthz
  POST /v1/pack       regions -> atlas layout
  POST /v1/serialize  packed regions -> PSDB binary
  POST /v1/convert    regions -> packed PSDB binary
  GET  /v1/jobs       recent conversions
  GET  /v1/jobs/{id}  one conversion`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx := cmd.Context()
			store, err := c.newJobStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			observability.NewLogHooks(c.Logger).Register()
			defer observability.Reset()

			srv := server.New(server.Options{
				Jobs:         store,
				Logger:       c.Logger,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
