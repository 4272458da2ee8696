package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/tvtracker/internal/ingest"
	"github.com/example/tvtracker/internal/ingest/queue"
	"github.com/example/tvtracker/internal/platform/api"
	"github.com/example/tvtracker/internal/platform/config"
	"github.com/example/tvtracker/internal/platform/db"
	"github.com/example/tvtracker/internal/platform/httpserver"
	"github.com/example/tvtracker/internal/platform/logging"
	"github.com/example/tvtracker/internal/platform/natsconn"
	"github.com/example/tvtracker/internal/platform/run"
	"github.com/example/tvtracker/internal/ratelimit"
	"github.com/example/tvtracker/internal/store"
	"github.com/example/tvtracker/internal/tvmaze"
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

	ink := ingest.LoadConfig()

	pool, err := db.Open(context.Background())
	if err != nil {
		log.Error("db open", zap.Error(err))
		run.Exit(1)
	}
	defer pool.Close()

	if err := store.EnsureSchema(context.Background(), pool); err != nil {
		log.Error("ensure schema", zap.Error(err))
		run.Exit(1)
	}

	broadcasts := ingest.NewBroadcastStore(log, store.NewPostgresStore(pool))

	var nc *nats.Conn
	if ink.NATSURL != "" {
		nc, err = natsconn.Connect(natsconn.Options{URL: ink.NATSURL})
		if err != nil {
			log.Error("nats connect", zap.Error(err))
			run.Exit(1)
		}
		defer nc.Close()
	}

	// runImport builds a fresh client and limiter per run: the client's
	// per-date cache must not leak across runs.
	runImport := func(ctx context.Context, days int) error {
		if days <= 0 {
			days = ink.Days
		}
		limiter := ratelimit.NewInterval(ink.Delay)
		defer limiter.Stop()

		client := tvmaze.New(ink.TVMazeBaseURL, log)
		importer := ingest.NewImporter(log, client, broadcasts, days, limiter)
		if _, err := importer.Run(ctx); err != nil {
			return err
		}
		if nc != nil {
			// Flush the read API's listing cache so fresh rows are visible.
			_ = nc.Publish(invalidateSubject(), []byte("ALL"))
		}
		return nil
	}

	if nc != nil {
		wrk, err := queue.NewWorker(log, nc, runImport)
		if err != nil {
			log.Error("worker init", zap.Error(err))
			run.Exit(1)
		}
		go func() {
			if err := wrk.Run(context.Background()); err != nil {
				log.Error("worker stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("NATS_URL not set, import job consumer disabled")
	}

	if ink.RunOnStart {
		go func() {
			if err := runImport(context.Background(), 0); err != nil {
				log.Error("startup import failed", zap.Error(err))
			}
		}()
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})

	// Manual trigger for local debugging. Prefer NATS jobs in production.
	if ink.EnableHTTPTriggers {
		r.Post("/v1/import/run", func(w http.ResponseWriter, r *http.Request) {
			go func() {
				if err := runImport(context.Background(), 0); err != nil {
					log.Error("triggered import failed", zap.Error(err))
				}
			}()
			api.WriteJSON(w, http.StatusAccepted, map[string]any{"status": "started", "days": ink.Days})
		})
	}

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
