package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Service   SchedulingService
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	AMQP      *amqp091.Connection
	Logger    *zap.Logger
	Env       string
	Version   string
	RateLimit int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.AMQP, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Doctor discovery endpoints
	r.Get("/doctors/available", findAvailableDoctorsHandler(cfg.Service))
	r.Get("/doctors/top", topDoctorsHandler(cfg.Service))
	r.Get("/doctors/{id}/slots", getFreeSlotsHandler(cfg.Service))
	r.Get("/specialties", listSpecialtiesHandler(cfg.Service))

	// Appointment endpoints
	r.Post("/appointments", createAppointmentHandler(cfg.Service))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Service))

	// Patient endpoints
	r.Get("/patients/{id}/appointments/next", nextAppointmentHandler(cfg.Service))
	r.Get("/patients/{id}/favorites", listFavoritesHandler(cfg.Service))
	r.Post("/patients/{id}/favorites", addFavoriteHandler(cfg.Service))
	r.Delete("/favorites/{id}", removeFavoriteHandler(cfg.Service))

	return r
}
