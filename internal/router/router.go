package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"nutricionista-backend/internal/handlers"
	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/websocket"
)

// Limits applied per client.
const (
	onboardingPerMinute = 10
	aiPerMinute         = 20
)

type Handlers struct {
	Session   *handlers.SessionHandler
	MealPlan  *handlers.MealPlanHandler
	Chat      *handlers.ChatHandler
	Label     *handlers.LabelHandler
	Progress  *handlers.ProgressHandler
	Dashboard *handlers.DashboardHandler
	MCP       *handlers.MCPHandler
}

// New builds the HTTP surface. wsHub may be nil when Redis is not configured.
func New(jwtAuth *middleware.JWTAuth, h Handlers, wsHub *websocket.Hub, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	onboardingLimiter := middleware.NewRateLimiter(onboardingPerMinute, time.Minute, middleware.ByIP)
	aiLimiter := middleware.NewRateLimiter(aiPerMinute, time.Minute, middleware.BySession)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Onboarding (public) ────
		r.Get("/onboarding/options", h.Session.OnboardingOptions)

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.With(onboardingLimiter.Middleware).Post("/", h.Session.Create)
			r.With(jwtAuth.Optional).Get("/route", h.Session.Route)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/me", h.Session.Me)
				r.Put("/me/premium", h.Session.UpdatePremium)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Get("/session/state", h.Dashboard.State)
			r.Get("/dashboard", h.Dashboard.Get)

			// ──── Meal Plan Routes ────
			r.Route("/meal-plan", func(r chi.Router) {
				r.With(aiLimiter.Middleware).Post("/", h.MealPlan.Generate)
				r.Get("/", h.MealPlan.Get)
				r.Delete("/pending", h.MealPlan.Abandon)
			})

			// ──── Chat Routes ────
			r.Route("/chat", func(r chi.Router) {
				r.With(aiLimiter.Middleware).Post("/messages", h.Chat.Send)
				r.Get("/history", h.Chat.History)
				r.Delete("/", h.Chat.Reset)
			})

			// ──── Label Routes ────
			r.Route("/labels", func(r chi.Router) {
				r.With(aiLimiter.Middleware).Post("/analyze", h.Label.Analyze)
				r.Delete("/pending", h.Label.Abandon)
			})

			// ──── Progress Routes ────
			r.Route("/progress", func(r chi.Router) {
				r.Get("/", h.Progress.Get)
				r.Post("/", h.Progress.Log)
			})

			// ──── MCP ────
			r.With(aiLimiter.Middleware).Post("/mcp", h.MCP.ServeHTTP)
		})

		// ──── WebSocket ────
		if wsHub != nil {
			r.Get("/ws", wsHub.HandleWebSocket)
		}
	})

	return r
}
