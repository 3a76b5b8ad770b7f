package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/api"
	"github.com/hackgods/consultation-scheduling/internal/app"
	"github.com/hackgods/consultation-scheduling/internal/config"
	"github.com/hackgods/consultation-scheduling/internal/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.FromEnv()
		boot.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogFormat).With().Str("service", "api-server").Logger()
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	if err := a.Migrate(rootCtx); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Dispatcher.Run(dispatchCtx)
	}()

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Service:   a.Service,
			Scheduler: a.Job,
			Postgres:  a.PingPostgres,
			Redis:     a.PingRedis,
			Logger:    logger,
			Env:       cfg.Env,
			Version:   version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	stopDispatch()
	wg.Wait()
	logger.Info().Msg("server stopped")
}
