package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventmarket/internal/delivery/http/controllers"
	"eventmarket/internal/delivery/http/middleware"
	"eventmarket/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Mutating event routes and the dashboard require a Bearer token; browsing,
// categories, auth, and contact are public.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	eventController *controllers.EventController,
	listingController *controllers.ListingController,
	categoryController *controllers.CategoryController,
	authController *controllers.AuthController,
	contactController *controllers.ContactController,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Public catalog
	mux.HandleFunc("GET /categories", categoryController.ListCategories)
	mux.HandleFunc("GET /events", listingController.BrowseEvents)
	mux.HandleFunc("GET /events/upcoming", eventController.UpcomingEvents)
	mux.HandleFunc("GET /events/{slug}", eventController.GetEventBySlug)

	// Host-only event lifecycle
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{slug}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{slug}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("GET /dashboard/events", requireAuth(listingController.HostEvents))

	// Contact
	mux.HandleFunc("POST /contact", contactController.SendMessage)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
