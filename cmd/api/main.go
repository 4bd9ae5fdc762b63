package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/samirrijal/immoreims/internal/adapters/http"
	natsadapter "github.com/samirrijal/immoreims/internal/adapters/nats"
	"github.com/samirrijal/immoreims/internal/adapters/valkey"
	"github.com/samirrijal/immoreims/internal/app"
	"github.com/samirrijal/immoreims/internal/core/ports"
	"github.com/samirrijal/immoreims/internal/pkg/config"
	"github.com/samirrijal/immoreims/internal/pkg/logging"
	"github.com/samirrijal/immoreims/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("immoreims-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var cache ports.CacheService
	var cacheClient *valkey.Cache
	if cfg.Valkey.Enabled {
		cacheClient, err = valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cacheClient.Close()
			cache = cacheClient
		}
	}

	// NATS
	origin := uuid.NewString()
	var publisher ports.EventPublisher
	var pub *natsadapter.Publisher
	if cfg.NATS.Enabled {
		pub, err = natsadapter.NewPublisher(cfg.NATS.URL, origin)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	loader, dashboard, err := app.Build(cfg, cache, publisher)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	deps := &http.Dependencies{
		Dashboard: dashboard,
		Datasets:  loader,
	}
	if cacheClient != nil {
		deps.Cache = cacheClient
	}

	// Replicas drop their snapshot when another one reloads.
	if pub != nil {
		sub := natsadapter.NewSubscriber(pub.Conn(), origin)
		if err := sub.SubscribeInvalidations(ctx, loader.Forget); err != nil {
			slog.Warn("invalidation subscribe failed", "error", err)
		} else {
			defer sub.Close()
		}
		deps.NATS = pub.Conn()
	}

	if cfg.Source.Preload {
		go func() {
			if _, err := loader.Load(ctx); err != nil {
				slog.Error("dataset preload failed", "error", err)
			}
		}()
	}

	// Fiber
	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "ImmoReims API",
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, Link, X-Request-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(fiberApp, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "source", loader.SourceKey())
		if err := fiberApp.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
