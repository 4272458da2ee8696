package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/tvtracker/internal/handlers"
	"github.com/example/tvtracker/internal/platform/config"
	"github.com/example/tvtracker/internal/platform/db"
	"github.com/example/tvtracker/internal/platform/httpserver"
	"github.com/example/tvtracker/internal/platform/logging"
	"github.com/example/tvtracker/internal/platform/natsconn"
	"github.com/example/tvtracker/internal/platform/run"
	"github.com/example/tvtracker/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.ForService(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	pool, err := db.Open(context.Background())
	if err != nil {
		log.Error("db open", zap.Error(err))
		run.Exit(1)
	}
	defer pool.Close()

	catalog := store.NewPostgresStore(pool)

	// Listing cache; invalidated by the importer after each run.
	var nc *nats.Conn
	if strings.TrimSpace(os.Getenv("NATS_URL")) != "" {
		nc, err = natsconn.Connect(natsconn.Options{})
		if err != nil {
			log.Error("nats connect", zap.Error(err))
			run.Exit(1)
		}
		defer nc.Close()
	}
	cache := handlers.NewTTLCache(envInt("CACHE_TTL_SECONDS", 60), nc, invalidateSubject())

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})

	r.Get("/v1/shows", handlers.ListShows(catalog, cache))
	r.Get("/v1/shows/{show_id}", handlers.GetShow(catalog))

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

func invalidateSubject() string {
	if s := strings.TrimSpace(os.Getenv("CACHE_INVALIDATE_SUBJECT")); s != "" {
		return s
	}
	return "catalog.cache.invalidate"
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
