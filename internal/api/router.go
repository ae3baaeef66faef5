package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/cretahub/internal/api/handlers"
	"github.com/nikhilbhutani/cretahub/internal/api/middleware"
	"github.com/nikhilbhutani/cretahub/internal/assistant"
	"github.com/nikhilbhutani/cretahub/internal/audit"
	"github.com/nikhilbhutani/cretahub/internal/auth"
	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/stt"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/tts"
	"github.com/nikhilbhutani/cretahub/internal/policy"
	"github.com/nikhilbhutani/cretahub/internal/session"
)

// Deps is everything the HTTP surface talks to. DB, Redis, STT, TTS and
// Audit are optional.
type Deps struct {
	Config   *config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Sessions *session.Manager
	Pipeline *assistant.Pipeline
	Data     dataset.Provider
	STT      stt.Provider
	TTS      tts.Provider
	Audit    *audit.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	if d.Config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(d.Config.Server.RequestTimeout))
	}
	r.Use(middleware.CORS(d.Config.Server.AllowedOrigins))
	r.Use(middleware.SecureHeaders(d.Config.Server.Production))
	r.Use(middleware.RateLimit(d.Config.Server.RateLimit))

	health := handlers.NewHealthHandler(d.DB, d.Redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	catalog := handlers.NewCatalogHandler(d.Data)
	sessions := handlers.NewSessionHandler(d.Sessions, d.Pipeline, d.STT, d.Config.STT.Language)
	speech := handlers.NewSpeechHandler(d.TTS)

	r.Route("/api/v1", func(r chi.Router) {
		jwtOn := d.Config.Auth.JWTSecret != ""
		if jwtOn {
			r.Use(auth.NewJWTMiddleware(d.Config.Auth.JWTSecret).Authenticate)
		}

		r.Get("/roles", catalog.Roles)
		r.Get("/voices", catalog.Voices)
		r.Get("/dataset", catalog.Dataset)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Delete("/{id}", sessions.End)
			r.Get("/{id}/turns", sessions.Turns)
			r.Post("/{id}/queries", sessions.Query)
			r.Post("/{id}/voice", sessions.Voice)
		})

		r.Post("/speech", speech.Speak)

		if d.Audit != nil {
			admin := handlers.NewAdminHandler(d.Audit)
			r.Route("/admin", func(r chi.Router) {
				if jwtOn {
					r.Use(auth.RequireRole(policy.Privileged))
				}
				r.Get("/turns", admin.Turns)
				r.Get("/usage", admin.Usage)
			})
		}
	})

	return r
}
