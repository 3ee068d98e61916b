package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/rate_ingest/app"
)

func main() {
	cfg := config.NewConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDone := app.NewApp(cfg).Start(ctx)

	<-ctx.Done()
	slog.Info("Shutting down rate ingestion", "reason", context.Cause(ctx))

	<-appDone
	slog.Info("Rate ingestion stopped")
}
