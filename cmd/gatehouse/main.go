package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/application/provision"
	"github.com/Akr1040317/gatehouse/internal/config"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/gateway"
	httprouter "github.com/Akr1040317/gatehouse/internal/infrastructure/http"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/http/handlers"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/http/middleware"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/persistence/postgres"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/queue"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/security"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/webhook"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	var delivery ports.WebhookEmitter
	if cfg.Webhook.URL != "" {
		opts := []webhook.HTTPEmitterOption{}
		if name, value, ok := splitHeader(cfg.Webhook.AuthHeader); ok {
			opts = append(opts, webhook.WithHeader(name, value))
		}
		delivery = webhook.NewHTTPEmitter(cfg.Webhook.URL, opts...)
	} else {
		delivery = webhook.NewNoopEmitter()
	}

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq, err := queue.NewAsynqEnqueuer(asynqOpt, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create asynq enqueuer")
		}
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, delivery, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		taskEnqueuer = queue.NewNoopEnqueuer()
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	profileRepo := postgres.NewProfileRepository(pool)
	usernameRegistry := postgres.NewUsernameRegistry(pool)
	authGateway := gateway.NewLocal(pool, hasher, taskEnqueuer, cfg.EmailVerification.BaseURL, cfg.EmailVerification.ExpirySecs)

	passwordSignupUC := provision.NewPasswordSignup(authGateway, profileRepo, usernameRegistry)
	credentialSigninUC := provision.NewCredentialSignin(authGateway, profileRepo)
	federatedUC := provision.NewFederated(profileRepo)
	checkUsernameUC := provision.NewCheckUsername(usernameRegistry)

	handlers.InitOAuthProviders(cfg.OAuth.CallbackBaseURL, cfg.OAuth.SessionSecret, cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret)

	// Audit events go through the task queue when one is running, so the
	// outbound POST never sits on the request path.
	emitter := delivery
	if asynqWorker != nil && cfg.Webhook.URL != "" {
		emitter = queue.NewAsyncEmitter(taskEnqueuer)
	}

	var ipLimit func(http.Handler) http.Handler
	if cfg.RateLimit.RatePerIP != "" {
		ipLimit, err = middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
		if err != nil {
			log.Fatal().Err(err).Msg("create IP rate limiter")
		}
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))
	corsMiddleware := middleware.CORS(cfg.CORS.AllowedOrigins, nil, nil)

	provisionHandler := handlers.NewProvisionHandler(passwordSignupUC, credentialSigninUC, checkUsernameUC, profileRepo, authGateway, emitter, log)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		ProvisionHandler: provisionHandler,
		HealthHandler:    healthHandler,
		OAuthBegin:       handlers.OAuthBegin(),
		OAuthCallback:    handlers.OAuthCallback(federatedUC, cfg.OAuth.RedirectURL, emitter, log),
		Log:              log,
		Secure:           secureMiddleware,
		CORS:             corsMiddleware,
		IPRateLimit:      ipLimit,
		APIVersion:       "1",
		Metrics:          true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}

// splitHeader parses "Name: value" into its parts.
func splitHeader(h string) (string, string, bool) {
	for i := 0; i < len(h); i++ {
		if h[i] == ':' {
			name := h[:i]
			value := h[i+1:]
			for len(value) > 0 && value[0] == ' ' {
				value = value[1:]
			}
			if name != "" && value != "" {
				return name, value, true
			}
			return "", "", false
		}
	}
	return "", "", false
}
