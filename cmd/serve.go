package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repofinder/config"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/server"
)

type serveOptions struct {
	addr      string
	verbosity int
	logFormat string
}

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves the search pipeline over HTTP:

  POST /search          JSON request, ranked JSON response
  GET  /search/stream   Server-Sent Events (intent, debug-query, item, error, done)
  GET  /health          liveness probe
  GET  /metrics         Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config or REPOFINDER_ADDR, :8000)")
	cmd.Flags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", string(log.FormatJSON), "Log format (json, text)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	format := log.Format(opts.logFormat)
	if format != log.FormatJSON && format != log.FormatText {
		return fmt.Errorf("invalid log format: %s (must be json or text)", opts.logFormat)
	}
	// The server always logs request summaries.
	log.InitializeWithFormat(log.LevelInfo+opts.verbosity, os.Stderr, format)

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.addr != "" {
		settings.Server.Addr = opts.addr
	}

	svc, err := newServices(settings)
	if err != nil {
		return err
	}

	router := server.NewRouter(svc.assembler, server.RouterOptions{
		CORSOrigins: settings.Server.CORSOrigins,
		Defaults:    settings.SearchDefaults(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting repofinder",
		"version", version,
		"addr", settings.Server.Addr,
		"github_authenticated", svc.github.Authenticated(),
		"llm_configured", settings.LLM.APIKey != "",
		"cache_ttl", settings.Cache.TTL)

	return server.Run(ctx, server.Options{
		Addr:              settings.Server.Addr,
		ReadHeaderTimeout: settings.Server.ReadHeaderTimeout,
		ShutdownTimeout:   settings.Server.ShutdownTimeout,
	}, router)
}
