package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/velotype/go-socket-typerace/internal/config"
	"github.com/velotype/go-socket-typerace/internal/db"
	"github.com/velotype/go-socket-typerace/internal/game"
	"github.com/velotype/go-socket-typerace/internal/handlers"
	"github.com/velotype/go-socket-typerace/internal/manager"
	"github.com/velotype/go-socket-typerace/internal/metrics"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var texts db.TextSource = db.NewStaticSource()
	if cfg.MongoURI != "" {
		source, err := db.Connect(ctx, cfg.MongoURI, logger)
		if err != nil {
			logger.Warn("mongo unavailable, serving built-in texts", "err", err)
		} else {
			defer source.Close(context.Background())
			texts = source
		}
	}

	registry := manager.NewRegistry(texts, game.DefaultConfig(), logger)
	handlers.Init(registry, logger)

	reaper := manager.NewReaper(registry, logger)
	go reaper.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/race", handlers.HandleWebSocket)
	mux.HandleFunc("/api/create-room", handlers.HandleCreateRoom)
	mux.HandleFunc("/api/check-room", handlers.HandleCheckRoom)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllow,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware.Handler(mux),
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
