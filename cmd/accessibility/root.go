package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	httpadapter "github.com/couchcryptid/accessibility-etl/internal/adapter/http"
	"github.com/couchcryptid/accessibility-etl/internal/config"
	"github.com/couchcryptid/accessibility-etl/internal/observability"
	"github.com/spf13/cobra"
)

// app carries the process-wide dependencies built once before any subcommand runs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "accessibility",
		Short:         "ETL for the Alicante public building accessibility survey",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.AddCommand(
		newFilterProvinceCmd(a),
		newFetchOSMCmd(a),
		newTransformCmd(a),
		newCombineCmd(a),
		newRDFCmd(a),
		newVisualizeCmd(a),
	)
	return root, a
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)
	a.metrics = observability.NewMetrics()
	return nil
}

// flushMetrics dumps the default registry when METRICS_TEXTFILE is set.
func (a *app) flushMetrics() {
	if a.cfg == nil || a.cfg.MetricsTextfile == "" {
		return
	}
	if err := observability.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Error("write metrics textfile", "path", a.cfg.MetricsTextfile, "error", err)
	}
}

// startStatusServer serves health, readiness, metrics and the run report
// while run is in progress. The returned func shuts the server down.
func (a *app) startStatusServer(run httpadapter.RunStatus) func() {
	if a.cfg.HTTPAddr == "" {
		return func() {}
	}

	srv := httpadapter.NewServer(a.cfg.HTTPAddr, run, a.logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown error", "error", err)
		}
	}
}
