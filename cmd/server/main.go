/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the distributor server: configuration, logging,
  store, router, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env vars / config.env via Viper)
  2. Build the structured logger
  3. Open the SQLite store (auto-migrates)
  4. Wire the API handler and router
  5. Serve with graceful shutdown

CONFIGURATION:
  APP_ENV               development | production (default development)
  LOG_LEVEL             trace|debug|info|warn|error (default info)
  HTTP_HOST / HTTP_PORT listen address (default 0.0.0.0:8080)
  DB_PATH               SQLite path, ":memory:" for throwaway (default fishplus.db)
  ALLOW_NEGATIVE_STOCK  let sales drive stock below zero (default false)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the database, exit.

SEE ALSO:
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/api"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/config"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/logger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("failed to open database")
	}
	defer store.Close()

	handler := api.NewHandler(store, cfg.Trading.AllowNegativeStock, log)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTP.Addr()).
			Str("db", cfg.DB.Path).
			Bool("allow_negative_stock", cfg.Trading.AllowNegativeStock).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
