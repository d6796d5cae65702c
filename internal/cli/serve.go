package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/server"
	"github.com/chazuruo/sweep/internal/store"
)

// ServeOptions contains the options for the serve command.
type ServeOptions struct {
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured store over HTTP",
		Long: `Expose the configured contact store over HTTP.

Routes:
  GET    /api/contacts?start=N&limit=M
  PATCH  /api/contacts/{id}
  DELETE /api/contacts/{id}
  GET    /healthz
  GET    /metrics

Point another machine's [store.http] base_url at this server to review
a Mac's address book remotely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(Global)
			if err != nil {
				return err
			}
			if opts.Addr != "" {
				cfg.Server.Addr = opts.Addr
			}
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close(st)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.Info("starting sweep server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("backend", cfg.Store.Backend),
	)
	return server.New(st, logger, reg).Listen(ctx, cfg.Server.Addr)
}
