package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hackgods/consultation-scheduling/internal/app"
	"github.com/hackgods/consultation-scheduling/internal/config"
	"github.com/hackgods/consultation-scheduling/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.FromEnv()
		boot.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogFormat).With().Str("service", "scheduler-worker").Logger()
	logger.Info().
		Str("env", cfg.Env).
		Dur("scheduler_interval", cfg.SchedulerInterval).
		Dur("reminder_interval", cfg.ReminderInterval).
		Msg("scheduler-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	// The dispatcher outlives the producers so their last notifications
	// are still delivered.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	var dispatchWG sync.WaitGroup
	dispatchWG.Add(1)
	go func() {
		defer dispatchWG.Done()
		a.Dispatcher.Run(dispatchCtx)
	}()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.Job.Run(rootCtx, cfg.SchedulerInterval)
	}()
	go func() {
		defer wg.Done()
		a.Reminders.Run(rootCtx, cfg.ReminderInterval)
	}()
	go func() {
		defer wg.Done()
		if err := a.Consumer.Run(rootCtx); err != nil {
			logger.Error().Err(err).Msg("confirmation consumer stopped")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutdown signal received, stopping workers")
	wg.Wait()

	stopDispatch()
	dispatchWG.Wait()
	logger.Info().Msg("scheduler-worker stopped")
}
