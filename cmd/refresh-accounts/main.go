package main

import (
	"context"
	"flag"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/accounts"
	"github.com/geotenants/geo-tenants-backend/internal/config"
	"github.com/geotenants/geo-tenants-backend/internal/db"
	"github.com/geotenants/geo-tenants-backend/internal/logging"
	"github.com/joho/godotenv"
)

var dropOnly = flag.Bool("drop-only", false, "Only delete the redis snapshot; the server reloads on next use")

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	cfg := config.LoadFromEnv()
	logging.Init("geo-tenants-refresh", cfg.LogLevel)
	log := logging.Module("refresh-accounts")

	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL not set; the in-process cache refreshes itself daily")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mirror, err := accounts.NewRedisMirror(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Redis connection error: %v", err)
	}
	defer mirror.Close()

	if err := mirror.Drop(ctx); err != nil {
		log.Fatalf("Error deleting snapshot: %v", err)
	}
	log.Infof("Deleted %s", mirror.Key)

	if *dropOnly {
		return
	}

	db.Connect(cfg.DatabaseURL)
	cache := accounts.NewCache(accounts.DBSource{DB: db.DB}, mirror)
	if err := cache.Refresh(ctx, true); err != nil {
		log.Fatalf("Refresh failed: %v", err)
	}

	lookup, _ := cache.Snapshot(ctx)
	log.WithField("accounts", len(lookup)).Info("Account snapshot rebuilt and mirrored to redis")
}
