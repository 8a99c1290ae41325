package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Akr1040317/gatehouse/internal/infrastructure/http/handlers"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	ProvisionHandler *handlers.ProvisionHandler
	HealthHandler    *handlers.HealthHandler
	OAuthBegin       http.HandlerFunc // GET /auth/:provider
	OAuthCallback    http.HandlerFunc // GET /auth/:provider/callback
	Log              zerolog.Logger
	Secure           func(http.Handler) http.Handler
	CORS             func(http.Handler) http.Handler
	IPRateLimit      func(http.Handler) http.Handler
	APIVersion       string
	Metrics          bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.APIVersion != "" {
		r.Use(middleware.APIVersion(cfg.APIVersion))
	}
	r.Use(chimid.AllowContentType("application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.ProvisionHandler.Signup)
		r.Post("/login", cfg.ProvisionHandler.Login)
		r.Post("/verify-email", cfg.ProvisionHandler.VerifyEmail)
		if cfg.OAuthBegin != nil {
			r.Get("/{provider}", cfg.OAuthBegin)
		}
		if cfg.OAuthCallback != nil {
			r.Get("/{provider}/callback", cfg.OAuthCallback)
		}
	})

	r.Get("/usernames/{username}", cfg.ProvisionHandler.UsernameAvailability)
	r.Get("/profiles/{id}", cfg.ProvisionHandler.GetProfile)

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
