package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

type AppointmentService interface {
	RequestAppointment(ctx context.Context, in appointment.RequestInput) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ApplyConfirmation(ctx context.Context, id uuid.UUID, confirmed bool) (*appointment.Appointment, error)
}

// SchedulingRunner triggers one scheduling run. *scheduling.Job satisfies it.
type SchedulingRunner interface {
	RunOnce(ctx context.Context) error
}

type RouterConfig struct {
	Service   AppointmentService
	Scheduler SchedulingRunner
	Postgres  Pinger
	Redis     Pinger
	Logger    zerolog.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/appointments", createAppointmentHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Service))

	if cfg.Scheduler != nil {
		r.Post("/scheduling/run", runSchedulingHandler(cfg.Scheduler))
	}

	return r
}
