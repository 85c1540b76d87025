// @title Event Market API
// @version 1.0
// @description Event ticketing marketplace backend: hosts create and manage
// @description events with ticket tiers, visitors browse published events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"eventmarket/config"
	_ "eventmarket/docs"
	"eventmarket/internal/adapters/auth"
	"eventmarket/internal/adapters/email"
	"eventmarket/internal/adapters/imagestore"
	delivery "eventmarket/internal/delivery/http"
	"eventmarket/internal/delivery/http/controllers"
	"eventmarket/internal/delivery/http/middleware"
	"eventmarket/internal/repository/postgres"
	"eventmarket/internal/services"

	"golang.org/x/crypto/bcrypt"
)

const serviceTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Adapters
	tokens := auth.NewJWTTokens(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}
	images := imagestore.New(imagestore.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}, nil)

	// Services
	eventService := services.NewEventService(eventRepo, categoryRepo, images, logger, serviceTimeout)
	listingService := services.NewListingService(eventRepo, serviceTimeout)
	categoryService := services.NewCategoryService(categoryRepo, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry)
	contactService := services.NewContactService(mailer, cfg.ContactAddress)

	// Controllers
	eventController := controllers.NewEventController(logger, eventService)
	listingController := controllers.NewListingController(logger, listingService)
	categoryController := controllers.NewCategoryController(logger, categoryService)
	authController := controllers.NewAuthController(logger, authService)
	contactController := controllers.NewContactController(logger, contactService)

	mux := delivery.NewRouter(logger, tokens,
		eventController, listingController, categoryController, authController, contactController)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
