package api

import (
	"net/http"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/httputil"
)

// RecordEvent ingests one delivery event. Replayed event IDs are
// acknowledged without effect, so producers can retry freely.
func (h *Handlers) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.DeliveryEvent
	if !httputil.Decode(w, r, &ev) {
		return
	}
	if err := h.aggregator.Record(r.Context(), &ev); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": "accepted", "event_id": ev.ID})
}
