package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/auth"
	"github.com/vkurushin/wordchain/internal/config"
	"github.com/vkurushin/wordchain/internal/handler"
	"github.com/vkurushin/wordchain/internal/logger"
	"github.com/vkurushin/wordchain/internal/middleware"
	"github.com/vkurushin/wordchain/internal/queue"
	"github.com/vkurushin/wordchain/internal/repository"
	"github.com/vkurushin/wordchain/internal/repository/postgres"
	"github.com/vkurushin/wordchain/internal/repository/rediscache"
	"github.com/vkurushin/wordchain/internal/service"
	"github.com/vkurushin/wordchain/internal/vk"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("queue", cfg.QueueName).Str("defaultSetting", cfg.DefaultSetting).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := rediscache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	wordRepo := rediscache.NewWords(postgres.NewWordRepo(db), redisClient)
	cityRepo := rediscache.NewCities(postgres.NewCityRepo(db), redisClient)
	settingRepo := postgres.NewSettingRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	playerRepo := postgres.NewPlayerRepo(db)
	usedWordRepo := postgres.NewUsedWordRepo(db)
	voteRepo := postgres.NewVoteRepo(db)
	adminRepo := postgres.NewAdminRepo(db)

	seedAdmin(context.Background(), adminRepo, cfg.AdminEmail, cfg.AdminPassword)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// VK gateway
	if cfg.VKToken == "" {
		log.Warn().Msg("VK_TOKEN is empty, message sending will fail")
	}
	gateway := vk.NewClient(cfg.VKToken, cfg.VKGroupID, cfg.VKAPIVersion)

	// Rooms
	stores := service.Stores{
		Games:     gameRepo,
		Players:   playerRepo,
		Words:     wordRepo,
		Cities:    cityRepo,
		Settings:  settingRepo,
		UsedWords: usedWordRepo,
		Votes:     voteRepo,
	}
	coordinator := service.NewCoordinator(stores, gateway, wsHub, cfg.DefaultSetting)

	// Resume interrupted games before consuming fresh updates.
	if err := coordinator.Boot(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to resume active rooms (non-fatal)")
	}

	// Update consumer
	consumer, err := queue.NewConsumer(cfg.AmqpURL, cfg.QueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("Queue connection failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := consumer.Run(ctx, coordinator); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Update consumer failed")
		}
	}()

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr, adminRepo)
	wordHandler := handler.NewWordHandler(wordRepo)
	settingHandler := handler.NewSettingHandler(settingRepo)
	gameHandler := handler.NewGameHandler(gameRepo, playerRepo)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health + metrics
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth (public)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.RefreshToken)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /auth/me", authHandler.Me)
	api.HandleFunc("GET /words", wordHandler.ListWords)
	api.HandleFunc("POST /words", wordHandler.CreateWord)
	api.HandleFunc("GET /words/title/{title}", wordHandler.GetWordByTitle)
	api.HandleFunc("PATCH /words/{id}", wordHandler.UpdateWord)
	api.HandleFunc("DELETE /words/{id}", wordHandler.DeleteWord)
	api.HandleFunc("GET /settings", settingHandler.ListSettings)
	api.HandleFunc("POST /settings", settingHandler.CreateSetting)
	api.HandleFunc("GET /settings/{id}", settingHandler.GetSetting)
	api.HandleFunc("PATCH /settings/{id}", settingHandler.UpdateSetting)
	api.HandleFunc("DELETE /settings/{id}", settingHandler.DeleteSetting)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("GET /games/{id}/players", gameHandler.ListGamePlayers)
	api.HandleFunc("PATCH /players/{id}", gameHandler.UpdatePlayer)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket feed (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/events", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Admin API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down bot")

	cancel()
	if err := consumer.Close(); err != nil {
		log.Error().Err(err).Msg("Queue close error")
	}

	// Stop every room worker, persisting remaining turn time.
	coordinator.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Bot stopped")
}

// seedAdmin creates the bootstrap admin account when credentials are
// configured and the account does not exist yet.
func seedAdmin(ctx context.Context, admins repository.AdminRepository, email, password string) {
	if email == "" || password == "" {
		return
	}
	existing, err := admins.GetByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check seed admin")
		return
	}
	if existing != nil {
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash seed admin password")
		return
	}
	if _, err := admins.Create(ctx, email, hash); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to create seed admin")
		return
	}
	log.Info().Str("email", email).Msg("Seed admin created")
}
