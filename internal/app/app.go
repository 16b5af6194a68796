package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ishwarchoudhari/FloDo/docs"
	"github.com/ishwarchoudhari/FloDo/internal/cache"
	"github.com/ishwarchoudhari/FloDo/internal/config"
	"github.com/ishwarchoudhari/FloDo/internal/handlers"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
	"github.com/ishwarchoudhari/FloDo/internal/routes"
	"github.com/ishwarchoudhari/FloDo/internal/services"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("DB close failed: %v", err)
		}
	}()

	// === Redis ===
	kv := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := kv.Ping(context.Background()); err != nil {
		log.Fatal("Redis connection failed: ", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Printf("Redis close failed: %v", err)
		}
	}()

	// Sessions issued before this id are rejected on first use after a
	// restart. One fresh value per process start.
	bootGeneration := uuid.NewString()
	log.Printf("[app] boot generation %s", bootGeneration)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	var alertService services.AlertService
	if cfg.Telegram.Enabled {
		alertService = services.NewTelegramAlertService(cfg.Telegram.BotToken, cfg.Telegram.OpsChatID)
	} else {
		alertService = services.NewTelegramAlertService("", 0)
	}

	activityService := services.NewActivityService(activityRepo)
	singleSessionService := services.NewSingleSessionService(
		clientRepo,
		sessionRepo,
		activityService,
		alertService,
		cfg.Auth.EnforceSingleSessionFor,
	)
	authService := services.NewAuthService(
		userRepo,
		clientRepo,
		sessionRepo,
		singleSessionService,
		activityService,
		bootGeneration,
	)
	userService := services.NewUserService(userRepo, authService)
	clientService := services.NewClientService(clientRepo, authService, activityService)

	limiter := services.NewRateLimitService(kv, alertService)
	otpService := services.NewOTPService(kv)
	resetService := services.NewPasswordResetService(
		userRepo,
		clientRepo,
		otpService,
		limiter,
		emailService,
		authService,
		activityService,
		kv,
		time.Duration(cfg.Auth.OTPTTLSeconds)*time.Second,
		cfg.Auth.OTPMaxAttempts,
		cfg.Auth.ResetTokenSecret,
	)

	// === Handlers ===
	loginWindow := time.Duration(cfg.Auth.LoginWindowSeconds) * time.Second
	authHandler := handlers.NewAuthHandler(
		userService,
		authService,
		limiter,
		cfg.Auth.SessionCookie,
		cfg.Auth.SessionTTLSeconds,
		loginWindow,
		cfg.Auth.LoginMaxAttempts,
	)
	clientAuthHandler := handlers.NewClientAuthHandler(
		clientService,
		authService,
		limiter,
		cfg.Auth.SessionCookie,
		cfg.Auth.SessionTTLSeconds,
		loginWindow,
		cfg.Auth.LoginMaxAttempts,
	)
	resetHandler := handlers.NewPasswordResetHandler(resetService)
	userHandler := handlers.NewUserHandler(userService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authService,
		cfg.Auth.SessionCookie,
		authHandler,
		clientAuthHandler,
		resetHandler,
		userHandler,
	)

	// Sessions older than their TTL only get cleaned here; validity itself
	// is decided per request by the boot generation and active-session checks.
	startSessionJanitor(sessionRepo, time.Duration(cfg.Auth.SessionTTLSeconds)*time.Second)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Server start failed: ", err)
	}
}

func startSessionJanitor(sessions repositories.SessionRepository, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := sessions.DeleteOlderThan(time.Now().Add(-ttl))
			if err != nil {
				log.Printf("[app][janitor] sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[app][janitor] removed %d expired sessions", n)
			}
		}
	}()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
