package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"pulse/internal/delivery/http/controllers"
	"pulse/internal/delivery/http/middleware"
	"pulse/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	rsvpController *controllers.RSVPController,
	userController *controllers.UserController,
	feedController *controllers.FeedController,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", requireAuth(eventController.ListEvents))
	mux.HandleFunc("GET /events/nearby", requireAuth(eventController.NearbyEvents))
	mux.HandleFunc("GET /events/watch", requireAuth(feedController.WatchEvents))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/invitations", requireAuth(eventController.SendInvitations))

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvp", requireAuth(rsvpController.ToggleRSVP))
	mux.HandleFunc("GET /events/{eventID}/attendees", requireAuth(rsvpController.ListAttendees))

	// Current user
	mux.HandleFunc("GET /me", requireAuth(userController.GetProfile))
	mux.HandleFunc("PATCH /me", requireAuth(userController.UpdateProfile))
	mux.HandleFunc("GET /me/events", requireAuth(eventController.ListMyEvents))
	mux.HandleFunc("GET /me/attending", requireAuth(rsvpController.ListMyAttendingEvents))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
