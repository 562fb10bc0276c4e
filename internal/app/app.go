package app

import (
	"fmt"
	"log"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/config"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/database"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/handlers"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/pdf"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/repositories"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/routes"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ramyslait/Medical-Q-A-MIU-sub000/docs"
)

func Run() {
	cfg := config.LoadConfig()
	cookieKey := cfg.CookieKey()

	// === DB ===
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("database close failed: %v", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		log.Fatal("schema migration failed: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	tokenService := services.NewTokenService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	aiClient := utils.NewAIClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, cfg.AI.DryRun)

	// Telegram bot is optional; nil when no token is configured
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken)

	userService := services.NewUserService(userRepo, emailService, authService, tokenService)
	questionService := services.NewQuestionService(questionRepo, userRepo, aiClient, emailService, telegramService)
	feedbackService := services.NewFeedbackService(feedbackRepo)
	reportService := services.NewReportService(userRepo, questionRepo, feedbackRepo)

	// PDF generator (needs a TTF with full unicode coverage)
	pdfGen := pdf.NewReportGenerator(cfg.Files.RootDir, "assets/fonts/DejaVuSans.ttf")

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, cookieKey, cfg.Cookie.Secure)
	questionHandler := handlers.NewQuestionHandler(questionService, userService, pdfGen)
	reviewHandler := handlers.NewReviewHandler(questionService)
	adminHandler := handlers.NewAdminHandler(userService, feedbackService, reportService, pdfGen)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	var integrationsHandler *handlers.IntegrationsHandler
	if telegramService != nil {
		integrationsHandler = handlers.NewIntegrationsHandler(userService, telegramService)
	}

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		cookieKey,
		authHandler,
		questionHandler,
		reviewHandler,
		adminHandler,
		feedbackHandler,
		integrationsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
