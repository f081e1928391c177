package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/scriptswap/scriptswap-api/internal/config"
	"github.com/scriptswap/scriptswap-api/internal/domain/dispute"
	"github.com/scriptswap/scriptswap-api/internal/domain/listing"
	"github.com/scriptswap/scriptswap-api/internal/domain/reputation"
	"github.com/scriptswap/scriptswap-api/internal/domain/review"
	"github.com/scriptswap/scriptswap-api/internal/domain/token"
	"github.com/scriptswap/scriptswap-api/internal/domain/user"
	"github.com/scriptswap/scriptswap-api/internal/middleware"
	"github.com/scriptswap/scriptswap-api/internal/pkg/database"
	"github.com/scriptswap/scriptswap-api/internal/pkg/events"
	"github.com/scriptswap/scriptswap-api/internal/pkg/jwt"
	"github.com/scriptswap/scriptswap-api/internal/pkg/logger"
	pkgresponse "github.com/scriptswap/scriptswap-api/internal/pkg/response"
	"github.com/scriptswap/scriptswap-api/internal/pkg/scriptvault"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting ScriptSwap API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	publisher := events.NewPublisher(redisClient)

	var vault *scriptvault.Client
	if cfg.ScriptVaultEnabled {
		vault = scriptvault.NewClient(
			cfg.ScriptVaultBaseURL,
			cfg.ScriptVaultToken,
			time.Duration(cfg.ScriptVaultTimeoutSeconds)*time.Second,
		)
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	tokenRepo := token.NewRepository(db)
	listingRepo := listing.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	reputationRepo := reputation.NewRepository(db)
	disputeRepo := dispute.NewRepository(db)

	// ---------- Services ----------
	tokenService := token.NewService(tokenRepo)
	reputationService := reputation.NewService(reputationRepo, userRepo, publisher)
	reviewService := review.NewService(reviewRepo, tokenService, publisher)
	listingService := listing.NewService(listingRepo, reviewRepo, tokenService, reputationService, publisher, vault)
	disputeService := dispute.NewService(disputeRepo, reviewService, reputationService, publisher)

	// ---------- Handlers ----------
	tokenHandler := token.NewHandler(tokenService)
	listingHandler := listing.NewHandler(listingService)
	reviewHandler := review.NewHandler(reviewService)
	reputationHandler := reputation.NewHandler(reputationService)
	disputeHandler := dispute.NewHandler(disputeService)

	authMiddleware := middleware.Auth(jwtService)
	adminMiddleware := middleware.RequireRole("admin")

	// ---------- Background workers ----------
	reaper := listing.NewReaper(listingService, cfg.ReaperInterval)
	reaper.Start()
	defer reaper.Stop()

	decayWorker := reputation.NewWorker(reputationService, cfg.StrikeDecayInterval)
	decayWorker.Start()
	defer decayWorker.Stop()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/tokens", tokenHandler.Routes(authMiddleware))
		r.Mount("/listings", listingHandler.Routes(authMiddleware, adminMiddleware))
		r.Mount("/reviews", reviewHandler.Routes(authMiddleware))
		r.Mount("/reputation", reputationHandler.Routes(authMiddleware, adminMiddleware))
		r.Mount("/disputes", disputeHandler.Routes(authMiddleware, adminMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
