package api

import (
	"net/http"
	"time"

	"github.com/ignite/listpilot/internal/pkg/httputil"
	"github.com/ignite/listpilot/internal/service/campaign"
	"github.com/ignite/listpilot/internal/service/list"
	"github.com/ignite/listpilot/internal/service/subscriber"
	"github.com/ignite/listpilot/internal/service/subscription"
	"github.com/ignite/listpilot/internal/service/template"
	"github.com/ignite/listpilot/internal/stats"
)

// Handlers bundles the HTTP handlers and the services they front.
type Handlers struct {
	subscribers   *subscriber.Service
	lists         *list.Service
	subscriptions *subscription.Service
	templates     *template.Service
	campaigns     *campaign.Service
	aggregator    *stats.Aggregator

	startedAt time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(subscribers *subscriber.Service, lists *list.Service,
	subscriptions *subscription.Service, templates *template.Service,
	campaigns *campaign.Service, aggregator *stats.Aggregator) *Handlers {
	return &Handlers{
		subscribers:   subscribers,
		lists:         lists,
		subscriptions: subscriptions,
		templates:     templates,
		campaigns:     campaigns,
		aggregator:    aggregator,
		startedAt:     time.Now(),
	}
}

// HealthCheck reports process liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// pageResponse is the standard list envelope.
type pageResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
}
