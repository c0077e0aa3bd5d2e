package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/CustomGPTer/RAMS-Generator/internal/bootstrap"
	"github.com/CustomGPTer/RAMS-Generator/internal/config"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/internal/server"
	"github.com/CustomGPTer/RAMS-Generator/internal/tracer"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Otel, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, bootstrap.Options{Logger: sysLogger})
	if err != nil {
		log.Fatalf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	if err := container.AuditService.Consume(ctx); err != nil {
		log.Fatalf("Unable to start audit consumer: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server and session sweeper until shutdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return container.RunSweeper(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	if err := g.Wait(); err != nil {
		sysLogger.Error("SERVER", "Server stopped with error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
