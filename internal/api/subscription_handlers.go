package api

import (
	"net/http"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/httputil"
)

type upsertSubscriptionRequest struct {
	SubscriberID string                    `json:"subscriber_id"`
	ListID       string                    `json:"list_id"`
	Status       domain.SubscriptionStatus `json:"status"`
	Meta         map[string]any            `json:"meta"`
}

// UpsertSubscription writes the ledger row for a (subscriber, list) pair.
// PUT because the pair is the identity: repeating the call converges on
// the same row.
func (h *Handlers) UpsertSubscription(w http.ResponseWriter, r *http.Request) {
	var req upsertSubscriptionRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	sub, err := h.subscriptions.Upsert(r.Context(), req.SubscriberID, req.ListID, req.Status, req.Meta)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.OK(w, sub)
}

func (h *Handlers) GetSubscription(w http.ResponseWriter, r *http.Request) {
	subscriberID := r.URL.Query().Get("subscriber_id")
	listID := r.URL.Query().Get("list_id")
	if subscriberID == "" || listID == "" {
		httputil.BadRequest(w, "subscriber_id and list_id are required")
		return
	}
	sub, err := h.subscriptions.Get(r.Context(), subscriberID, listID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, sub)
}
