package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/httputil"
	"github.com/ignite/listpilot/internal/service/subscriber"
)

type createSubscriberRequest struct {
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	Attribs map[string]any `json:"attribs"`
}

func (h *Handlers) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req createSubscriberRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	sub, err := h.subscribers.Create(r.Context(), req.Email, req.Name, req.Attribs)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.Created(w, sub)
}

func (h *Handlers) GetSubscriber(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscribers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, sub)
}

func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	// ?email= is a point lookup, everything else is a filtered page.
	if email := r.URL.Query().Get("email"); email != "" {
		sub, err := h.subscribers.LookupByEmail(r.Context(), email)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.OK(w, sub)
		return
	}

	f := subscriber.ListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	subs, total, err := h.subscribers.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, pageResponse{Items: subs, Total: total})
}

type updateSubscriberRequest struct {
	Name    string         `json:"name"`
	Attribs map[string]any `json:"attribs"`
}

func (h *Handlers) UpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriberRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	sub, err := h.subscribers.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Attribs)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.OK(w, sub)
}

type setStatusRequest struct {
	Status domain.SubscriberStatus `json:"status"`
	Reason string                  `json:"reason"`
}

func (h *Handlers) SetSubscriberStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	sub, err := h.subscribers.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Reason)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.OK(w, sub)
}

func (h *Handlers) SubscriberSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.ForSubscriber(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, pageResponse{Items: subs, Total: len(subs)})
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
