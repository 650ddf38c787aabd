package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/config"
	"github.com/yourusername/mathquiz-api/internal/handler"
	"github.com/yourusername/mathquiz-api/internal/middleware"
	pgRepo "github.com/yourusername/mathquiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/mathquiz-api/internal/repository/redis"
	"github.com/yourusername/mathquiz-api/internal/service"
	"github.com/yourusername/mathquiz-api/internal/service/questiongen"
	"github.com/yourusername/mathquiz-api/pkg/auth"
	"github.com/yourusername/mathquiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	// Репозитории
	playerRepo := pgRepo.NewPlayerRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	settingsRepo := pgRepo.NewSettingsRepo(db)
	collectibleRepo := pgRepo.NewCollectibleRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to create cache repository: %v", err)
		os.Exit(1)
	}

	// JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to create JWT service: %v", err)
		os.Exit(1)
	}

	// Сервисы
	generator := questiongen.NewGenerator()
	leaderboardService := service.NewLeaderboardService(sessionRepo, playerRepo, cacheRepo)
	gameService := service.NewGameService(sessionRepo, settingsRepo, playerRepo, leaderboardService, cacheRepo, generator, db)
	settingsService := service.NewSettingsService(settingsRepo)
	collectibleService := service.NewCollectibleService(collectibleRepo, playerRepo, settingsRepo)
	playerService := service.NewPlayerService(playerRepo, sessionRepo, leaderboardService)

	authService, err := service.NewAuthService(playerRepo, jwtService, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Printf("Failed to create auth service: %v", err)
		os.Exit(1)
	}

	// Обработчики
	authHandler := handler.NewAuthHandler(authService)
	gameHandler := handler.NewGameHandler(gameService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	collectibleHandler := handler.NewCollectibleHandler(collectibleService)
	adminHandler := handler.NewAdminHandler(playerService)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(cacheRepo)

	isProduction := os.Getenv("GIN_MODE") == "release"

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.DefaultAuthRateLimitConfig()))
		{
			strict := authGroup.Group("")
			strict.Use(rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()))
			{
				strict.POST("/register", authHandler.Register)
				strict.POST("/login", authHandler.Login)
				strict.POST("/admin/login", authHandler.AdminLogin)
			}
		}

		// Таблица лидеров доступна без аутентификации
		api.GET("/leaderboard", leaderboardHandler.GetTop)

		game := api.Group("/game")
		game.Use(authMiddleware.RequireAuth())
		{
			game.POST("/start", gameHandler.StartGame)
			game.POST("/answer", rateLimiter.Limit(middleware.AnswerRateLimitConfig()), gameHandler.SubmitAnswer)
			game.GET("/end", gameHandler.GetGameEnd)
		}

		settings := api.Group("/settings")
		settings.Use(authMiddleware.RequireAuth())
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PUT("", settingsHandler.UpdateSettings)
		}

		collectibles := api.Group("/collectibles")
		collectibles.Use(authMiddleware.RequireAuth())
		{
			collectibles.GET("/available", collectibleHandler.GetAvailable)
			collectibles.GET("/my-collection", collectibleHandler.GetMyCollection)
			collectibles.GET("/unlockable", collectibleHandler.GetUnlockable)
			collectibles.GET("/selected", collectibleHandler.GetSelected)
			collectibles.POST("/unlock", collectibleHandler.Unlock)
			collectibles.POST("/select", collectibleHandler.Select)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/players", adminHandler.ListPlayers)
			admin.GET("/players/export", adminHandler.ExportPlayers)

			adminPlayer := admin.Group("/players/:id")
			adminPlayer.Use(middleware.ExtractUintParam("id", "playerID"))
			{
				adminPlayer.GET("/stats", adminHandler.GetPlayerStats)
				adminPlayer.GET("/trends", adminHandler.GetPlayerTrends)
				adminPlayer.GET("/compare", adminHandler.ComparePlayerPeriods)
				adminPlayer.PUT("/exclusion", adminHandler.SetPlayerExclusion)
				adminPlayer.DELETE("", adminHandler.DeletePlayer)
			}
		}
	}

	// HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
