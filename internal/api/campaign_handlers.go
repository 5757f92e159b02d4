package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/httputil"
	"github.com/ignite/listpilot/internal/service/campaign"
)

type createCampaignRequest struct {
	Name        string              `json:"name"`
	Subject     string              `json:"subject"`
	FromEmail   string              `json:"from_email"`
	Body        string              `json:"body"`
	ContentType domain.ContentType  `json:"content_type"`
	Type        domain.CampaignType `json:"campaign_type"`
	TemplateID  string              `json:"template_id"`
	ListIDs     []string            `json:"target_list_ids"`
	Segment     *domain.Segment     `json:"segment"`
}

func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), campaign.CreateInput{
		Name:        req.Name,
		Subject:     req.Subject,
		FromEmail:   req.FromEmail,
		Body:        req.Body,
		ContentType: req.ContentType,
		Type:        req.Type,
		TemplateID:  req.TemplateID,
		ListIDs:     req.ListIDs,
		Segment:     req.Segment,
	})
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	f := campaign.ListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	campaigns, total, err := h.campaigns.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, pageResponse{Items: campaigns, Total: total})
}

type updateCampaignRequest struct {
	Name        *string             `json:"name"`
	Subject     *string             `json:"subject"`
	FromEmail   *string             `json:"from_email"`
	Body        *string             `json:"body"`
	ContentType *domain.ContentType `json:"content_type"`
	TemplateID  *string             `json:"template_id"`
	ListIDs     []string            `json:"target_list_ids"`
	Segment     *domain.Segment     `json:"segment"`
}

func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req updateCampaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	err := h.campaigns.Update(r.Context(), id, campaign.UpdateFields{
		Name:        req.Name,
		Subject:     req.Subject,
		FromEmail:   req.FromEmail,
		Body:        req.Body,
		ContentType: req.ContentType,
		TemplateID:  req.TemplateID,
		ListIDs:     req.ListIDs,
		Segment:     req.Segment,
	})
	if err != nil {
		writeValidationError(w, err)
		return
	}
	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) CampaignStats(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"campaign_id": c.ID,
		"status":      c.Status,
		"stats":       c.Stats,
		"started_at":  c.StartedAt,
		"finished_at": c.FinishedAt,
		"last_error":  c.LastError,
	})
}

type scheduleCampaignRequest struct {
	SendAt *time.Time `json:"send_at"`
}

func (h *Handlers) ScheduleCampaign(w http.ResponseWriter, r *http.Request) {
	var req scheduleCampaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	sendAt := time.Time{}
	if req.SendAt != nil {
		sendAt = *req.SendAt
	}
	h.transition(w, r, func(id string) error {
		return h.campaigns.Schedule(r.Context(), id, sendAt)
	})
}

func (h *Handlers) StartCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id string) error {
		return h.campaigns.Start(r.Context(), id)
	})
}

func (h *Handlers) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id string) error {
		return h.campaigns.Pause(r.Context(), id)
	})
}

func (h *Handlers) ResumeCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id string) error {
		return h.campaigns.Resume(r.Context(), id)
	})
}

func (h *Handlers) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id string) error {
		return h.campaigns.Cancel(r.Context(), id)
	})
}

// transition runs one lifecycle operation and responds with the
// campaign's post-transition state.
func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, op func(id string) error) {
	id := chi.URLParam(r, "id")
	if err := op(id); err != nil {
		writeServiceError(w, err)
		return
	}
	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}
