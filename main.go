package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/accounts"
	"github.com/geotenants/geo-tenants-backend/internal/auth"
	"github.com/geotenants/geo-tenants-backend/internal/config"
	"github.com/geotenants/geo-tenants-backend/internal/db"
	"github.com/geotenants/geo-tenants-backend/internal/logging"
	"github.com/geotenants/geo-tenants-backend/internal/middleware"
	"github.com/geotenants/geo-tenants-backend/internal/tenants"
	"github.com/geotenants/geo-tenants-backend/internal/webhooks"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	cron "github.com/robfig/cron/v3"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	logging.Init("geo-tenants-backend", cfg.LogLevel)
	log := logging.Logger

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	mapCfg, err := config.LoadMapConfig(cfg.MapConfigPath)
	if err != nil {
		log.Fatalf("Map config: %v", err)
	}

	db.Connect(cfg.DatabaseURL)
	auth.Init()
	accounts.Init()
	tenants.Init()

	var mirror accounts.Mirror
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rm, err := accounts.NewRedisMirror(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, account cache will be in-memory only")
		} else {
			defer rm.Close()
			mirror = rm
		}
	}
	accountCache := accounts.NewCache(accounts.DBSource{DB: db.DB}, mirror)
	go func() {
		if err := accountCache.Refresh(context.Background(), false); err != nil {
			log.WithError(err).Error("Initial account cache load failed")
		}
	}()

	sessions := auth.GormSessionStore{DB: db.DB}

	authHandler, err := auth.NewHandler(sessions, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.CookieSecure)
	if err != nil {
		log.Fatalf("Admin secret: %v", err)
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := accounts.Schedule(c, accountCache); err != nil {
		log.WithError(err).Fatal("Failed to schedule account refresh cron")
	}
	if _, err := c.AddFunc("@hourly", func() {
		auth.PurgeExpired(sessions)
		authHandler.PruneLimiter()
	}); err != nil {
		log.WithError(err).Fatal("Failed to schedule session purge cron")
	}
	c.Start()
	defer c.Stop()

	svc, err := tenants.NewService(tenants.DBStore{DB: db.DB}, accountCache, mapCfg)
	if err != nil {
		log.Fatalf("Tenants service: %v", err)
	}

	r := chi.NewRouter()
	r.Use(logging.RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes(authHandler))
	if cfg.WebhookSecret != "" {
		r.Mount("/webhooks", webhooks.SetupRoutes(&webhooks.Handler{Secret: cfg.WebhookSecret, Cache: accountCache}))
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth.SessionInfo{Store: sessions}))
		r.Use(middleware.AdminMiddleware)
		r.Mount("/tenants", tenants.SetupRoutes(tenants.NewHandler(svc)))
	})

	log.Infof("Server listening on port :%s...", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
