package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
	"github.com/hackgods/consultation-scheduling/internal/config"
	"github.com/hackgods/consultation-scheduling/internal/db"
	"github.com/hackgods/consultation-scheduling/internal/fakedata"
	"github.com/hackgods/consultation-scheduling/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.FromEnv()
		boot.Fatal().Err(err).Msg("config load error")
	}
	logger := logging.New(cfg.Env, cfg.LogFormat).With().Str("service", "seed").Logger()

	count := 500
	if v := os.Getenv("SEED_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logger.Fatal().Str("SEED_REQUESTS", v).Msg("SEED_REQUESTS must be a positive integer")
		}
		count = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	ctx = context.Background()
	if err := db.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	gofakeit.Seed(0)

	svc := appointment.NewService(appointment.NewPgRepository(pool), cfg.Now, logger)

	logger.Info().Int("count", count).Msg("seeding pending appointment requests")
	byPriority := make(map[appointment.Priority]int)
	for i := 0; i < count; i++ {
		appt, err := svc.RequestAppointment(ctx, fakedata.Request())
		if err != nil {
			logger.Fatal().Err(err).Int("seeded", i).Msg("seed request")
		}
		byPriority[appt.Priority]++

		if (i+1)%100 == 0 {
			logger.Info().Int("seeded", i+1).Int("total", count).Msg("progress")
		}
	}

	logger.Info().
		Int("urgent", byPriority[appointment.PriorityUrgent]).
		Int("high", byPriority[appointment.PriorityHigh]).
		Int("medium", byPriority[appointment.PriorityMedium]).
		Int("low", byPriority[appointment.PriorityLow]).
		Msg("seed complete")
}
