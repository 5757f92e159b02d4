package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/listpilot/internal/pkg/httputil"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, tokens []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		if len(tokens) > 0 {
			r.Use(bearerAuth(tokens))
		}

		r.Route("/subscribers", func(r chi.Router) {
			r.Post("/", h.CreateSubscriber)
			r.Get("/", h.ListSubscribers)
			r.Get("/{id}", h.GetSubscriber)
			r.Put("/{id}", h.UpdateSubscriber)
			r.Put("/{id}/status", h.SetSubscriberStatus)
			r.Get("/{id}/subscriptions", h.SubscriberSubscriptions)
		})

		r.Route("/lists", func(r chi.Router) {
			r.Post("/", h.CreateList)
			r.Get("/", h.ListLists)
			r.Get("/{id}", h.GetList)
			r.Delete("/{id}", h.DeleteList)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Put("/", h.UpsertSubscription)
			r.Get("/", h.GetSubscription)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", h.CreateTemplate)
			r.Get("/", h.ListTemplates)
			r.Get("/{id}", h.GetTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.CreateCampaign)
			r.Get("/", h.ListCampaigns)
			r.Get("/{id}", h.GetCampaign)
			r.Put("/{id}", h.UpdateCampaign)
			r.Delete("/{id}", h.DeleteCampaign)
			r.Get("/{id}/stats", h.CampaignStats)
			r.Post("/{id}/schedule", h.ScheduleCampaign)
			r.Post("/{id}/start", h.StartCampaign)
			r.Post("/{id}/pause", h.PauseCampaign)
			r.Post("/{id}/resume", h.ResumeCampaign)
			r.Post("/{id}/cancel", h.CancelCampaign)
		})

		r.Post("/events", h.RecordEvent)
	})

	return r
}

// bearerAuth rejects requests whose Authorization header carries none of
// the configured tokens. Comparison is constant-time.
func bearerAuth(tokens []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			for _, t := range tokens {
				if subtle.ConstantTimeCompare([]byte(presented), []byte(t)) == 1 {
					next.ServeHTTP(w, req)
					return
				}
			}
			httputil.Error(w, http.StatusUnauthorized, "invalid token")
		})
	}
}
