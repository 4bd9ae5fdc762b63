// Command invalidate drops the cached dataset and tells every API replica to
// reload it on next use.
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"

	natsadapter "github.com/samirrijal/immoreims/internal/adapters/nats"
	"github.com/samirrijal/immoreims/internal/adapters/valkey"
	"github.com/samirrijal/immoreims/internal/app"
	"github.com/samirrijal/immoreims/internal/core/ports"
	"github.com/samirrijal/immoreims/internal/pkg/config"
	"github.com/samirrijal/immoreims/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("immoreims-invalidate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer c.Close()
		cache = c
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, "cli-"+uuid.NewString())
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	loader, _, err := app.Build(cfg, cache, pub)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	if err := loader.Invalidate(ctx); err != nil {
		log.Fatalf("invalidate: %v", err)
	}
	slog.Info("dataset invalidated", "source", loader.SourceKey())
}
