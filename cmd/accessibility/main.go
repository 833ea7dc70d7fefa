// Command accessibility runs the Alicante accessibility ETL steps: province
// filtering, OSM extraction, cleaning and enrichment, combination, linked
// data export and map rendering.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.flushMetrics()
	if err != nil {
		logger := a.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("command failed", "error", err)
		return 1
	}
	return 0
}
