package handlers

import (
	"net/http"
	"time"

	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// RouterConfig wires handlers into the HTTP API
type RouterConfig struct {
	Users       *UserHandler
	Photos      *PhotoHandler
	Swaps       *SwapHandler
	Reports     *ReportHandler
	Admin       *AdminHandler
	Messages    *MessageHandler
	WebSocket   *WebSocketHandler
	Health      *HealthHandler
	Auth        middleware.Authenticator
	Metrics     *metrics.Metrics
	AuthLimiter *middleware.RateLimiter
	// Recover wraps the stack outside the request logger, e.g. Sentry's handler
	Recover func(http.Handler) http.Handler
}

// NewRouter builds the chi router serving the API
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	if cfg.Recover != nil {
		r.Use(cfg.Recover)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Live)
		r.Get("/readyz", cfg.Health.Ready)
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware)
			}
			r.Post("/auth/register", cfg.Users.Register)
			r.Post("/auth/login", cfg.Users.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Auth))

			r.Get("/auth/me", cfg.Users.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/stats", cfg.Users.Stats)
				r.Get("/browse", cfg.Users.Browse)
				r.Put("/profile", cfg.Users.UpdateProfile)
				r.Post("/profile/photo", cfg.Photos.UploadProfilePhoto)
				r.Put("/profile/photo", cfg.Photos.ConfirmProfilePhoto)
				r.Put("/push-token", cfg.Users.SetPushToken)
				r.Get("/{id}", cfg.Users.GetProfile)
				r.Get("/{id}/feedback", cfg.Users.Feedback)
			})

			r.Route("/swaps", func(r chi.Router) {
				r.Post("/request", cfg.Swaps.RequestSwap)
				r.Get("/my-requests", cfg.Swaps.MyRequests)
				r.Get("/recent", cfg.Swaps.Recent)
				r.Get("/{id}", cfg.Swaps.Get)
				r.Put("/{id}/accept", cfg.Swaps.Accept)
				r.Put("/{id}/reject", cfg.Swaps.Reject)
				r.Put("/{id}/complete", cfg.Swaps.Complete)
				r.Delete("/{id}", cfg.Swaps.Delete)
				r.Post("/{id}/feedback", cfg.Swaps.SubmitFeedback)
			})

			r.Post("/reports", cfg.Reports.FileReport)
			r.Get("/messages/latest", cfg.Messages.Latest)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/stats", cfg.Admin.Stats)
				r.Get("/users", cfg.Admin.Users)
				r.Get("/swaps", cfg.Admin.Swaps)
				r.Get("/reports", cfg.Reports.List)
				r.Put("/users/{id}/ban", cfg.Admin.Ban)
				r.Put("/users/{id}/unban", cfg.Admin.Unban)
				r.Post("/broadcast", cfg.Admin.Broadcast)
				r.Put("/reports/{id}/status", cfg.Reports.Resolve)
				r.Put("/reports/{id}/investigate", cfg.Reports.Investigate)
				r.Get("/export/{kind}", cfg.Admin.Export)
			})
		})
	})

	// WebSocket route
	if cfg.WebSocket != nil {
		r.Get("/ws", cfg.WebSocket.HandleWebSocket)
	}

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	var event *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		event = hlog.FromRequest(r).Error()
	case status >= http.StatusBadRequest:
		event = hlog.FromRequest(r).Warn()
	default:
		event = hlog.FromRequest(r).Info()
	}
	event.
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}

// requestIDLogger tags the request logger with chi's request id
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chiMiddleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
