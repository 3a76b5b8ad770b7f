package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
	"github.com/hackgods/consultation-scheduling/internal/config"
	"github.com/hackgods/consultation-scheduling/internal/confirmation"
	"github.com/hackgods/consultation-scheduling/internal/db"
	"github.com/hackgods/consultation-scheduling/internal/notify"
	"github.com/hackgods/consultation-scheduling/internal/patient"
	redisclient "github.com/hackgods/consultation-scheduling/internal/redis"
	"github.com/hackgods/consultation-scheduling/internal/reminder"
	"github.com/hackgods/consultation-scheduling/internal/roster"
	"github.com/hackgods/consultation-scheduling/internal/scheduling"
)

const notificationStreamMaxLen = 100_000

// App holds the connections and services shared by the binaries.
type App struct {
	Config config.Config
	Logger zerolog.Logger

	Pool  *pgxpool.Pool
	Redis *redis.Client

	Repo       *appointment.PgRepository
	Service    *appointment.Service
	Dispatcher *notify.Dispatcher
	Engine     *scheduling.Engine
	Job        *scheduling.Job
	Reminders  *reminder.Service
	Consumer   *confirmation.Consumer
}

// New connects to Postgres and Redis and wires every service. The caller
// must Close the returned App.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	pgCtx, cancelPg := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{
		MaxConns:        cfg.PostgresMaxConn,
		MinConns:        cfg.PostgresMinConn,
		ApplicationName: "consultation-scheduling",
	})
	cancelPg()
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}
	logger.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	logger.Info().Msg("connected to Redis")

	a := &App{
		Config: cfg,
		Logger: logger,
		Pool:   pool,
		Redis:  rdb,
		Repo:   appointment.NewPgRepository(pool),
	}
	a.wire()
	return a, nil
}

func (a *App) wire() {
	cfg := a.Config

	sinks := []notify.Sink{
		notify.NewRedisStreamSink(a.Redis, cfg.NotificationStream, notificationStreamMaxLen),
	}
	if cfg.Email.Enabled {
		sinks = append(sinks, notify.NewSMTPEmailSink(cfg.Email.Host, cfg.Email.Port, cfg.Email.Username, cfg.Email.Password, cfg.Email.From))
	}
	if cfg.Env == "dev" {
		sinks = append(sinks, notify.LogSink{Logger: a.Logger})
	}
	a.Dispatcher = notify.NewDispatcher(a.Logger, notify.DefaultBuffer, sinks...)

	rosterClient := roster.NewClient(cfg.RosterServiceURL, cfg.HTTPClientTimeout)
	patientClient := patient.NewClient(cfg.PatientServiceURL, cfg.HTTPClientTimeout)

	a.Service = appointment.NewService(a.Repo, cfg.Now, a.Logger)
	a.Engine = scheduling.NewEngine(a.Repo, rosterClient, patientClient, a.Dispatcher, cfg.Now, a.Logger)
	a.Job = scheduling.NewJob(a.Engine, redisclient.NewRedisLocker(a.Redis, cfg.LockTTL), a.Logger)

	marker := redisclient.NewMarker(a.Redis, "reminder", cfg.ReminderDedupeTTL)
	a.Reminders = reminder.NewService(a.Repo, patientClient, a.Dispatcher, marker, cfg.Now, a.Logger)

	a.Consumer = confirmation.NewConsumer(a.Redis, a.Service, cfg.ConfirmationStream, cfg.ConfirmationGroup, consumerName(), a.Logger)
}

// Migrate applies pending schema migrations.
func (a *App) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, a.Pool, a.Logger)
}

// PingPostgres and PingRedis back the readiness endpoint.
func (a *App) PingPostgres(ctx context.Context) error { return a.Pool.Ping(ctx) }
func (a *App) PingRedis(ctx context.Context) error    { return a.Redis.Ping(ctx).Err() }

func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("error closing redis")
	}
	a.Pool.Close()
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "scheduler"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
