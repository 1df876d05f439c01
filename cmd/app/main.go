package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hubstaff-bot-backend/internal/bot"
	"hubstaff-bot-backend/internal/bot/handlers"
	"hubstaff-bot-backend/internal/common/cache"
	"hubstaff-bot-backend/internal/common/config"
	"hubstaff-bot-backend/internal/common/logger"
	"hubstaff-bot-backend/internal/features/hubstaff"
	hubstaffhttp "hubstaff-bot-backend/internal/features/hubstaff/delivery/http"
	userpg "hubstaff-bot-backend/internal/features/user/repository/postgres"
	"hubstaff-bot-backend/internal/migrate"
	"hubstaff-bot-backend/internal/platform/postgres"
	"hubstaff-bot-backend/internal/platform/redis"
	"hubstaff-bot-backend/internal/platform/telegram"
)

func main() {
	cfg := config.Load()
	logger.Init("hubstaff-bot", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := migrate.Up(ctx, cfg.Database.URL); err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer redisClient.Close()

	cacheService := cache.NewCacheService(redisClient)

	tgClient := telegram.NewClient(cfg.Telegram.BotToken)

	oauthService := hubstaff.NewOAuthService(hubstaff.OAuthConfig{
		ClientID:     cfg.Hubstaff.ClientID,
		ClientSecret: cfg.Hubstaff.ClientSecret,
		RedirectURI:  cfg.Hubstaff.RedirectURI,
		Scope:        cfg.Hubstaff.Scope,
		DiscoveryURL: cfg.Hubstaff.DiscoveryURL,
	}, cacheService)

	router := bot.NewRouter()
	service := handlers.NewService(oauthService, hubstaff.NewClient(),
		handlers.NewStaticVerifier(cfg.Admin.Password))
	service.Register(router)

	pipeline := bot.NewPipeline(db.Pool, router, tgClient)
	dispatcher := bot.NewDispatcher(tgClient, pipeline, cfg.Telegram.PollTimeout)

	srv := httpServer(cfg, db, oauthService, tgClient)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// The poll loop owns the foreground until a signal arrives.
	dispatcher.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	logger.Info().Msg("Shutdown complete")
}

func httpServer(cfg *config.Config, db *postgres.DB, oauthService *hubstaff.OAuthService, tgClient *telegram.Client) *http.Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.Server.Origin},
		AllowMethods: []string{"GET"},
	}))

	engine.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The redirect handler writes through the pool directly; the per-update
	// transaction scope belongs to the poll loop only.
	oauthHandler := hubstaffhttp.NewHandler(oauthService, userpg.New(db.Pool), tgClient)
	oauthHandler.RegisterRoutes(engine)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}
}
