package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"pulse/config"
	_ "pulse/docs"
	authadapter "pulse/internal/adapters/auth"
	emailadapter "pulse/internal/adapters/email"
	delivery "pulse/internal/delivery/http"
	"pulse/internal/delivery/http/controllers"
	"pulse/internal/delivery/http/middleware"
	"pulse/internal/repository/postgres"
	"pulse/internal/services"
)

const (
	serviceTimeout = 10 * time.Second
	bcryptCost     = 10
)

// @title Pulse API
// @version 1.0
// @description Location-based social events: create Pulses, browse nearby, RSVP with capacity enforcement.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	userRepo := postgres.NewUserRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(bcryptCost)
	tokenIssuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := emailadapter.NewMailer(logger, emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	feed := services.NewFeedBroadcaster()
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	eventService := services.NewEventService(eventRepo, userRepo, invitationRepo, emailService, feed, serviceTimeout)
	rsvpService := services.NewRSVPService(eventRepo, rsvpRepo, userRepo, feed, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, tokenIssuer, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	userService := services.NewUserService(userRepo, serviceTimeout)

	// Controllers
	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	rsvpController := controllers.NewRSVPController(logger, rsvpService)
	userController := controllers.NewUserController(logger, userService)
	feedController := controllers.NewFeedController(logger, feed)

	mux := delivery.NewRouter(logger, tokenVerifier, authController, eventController, rsvpController, userController, feedController)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
