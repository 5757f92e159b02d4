package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/listpilot/internal/pkg/httputil"
)

type createTemplateRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	t, err := h.templates.Create(r.Context(), req.Name, req.Body)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.Created(w, t)
}

func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, total, err := h.templates.List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, pageResponse{Items: templates, Total: total})
}

func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}
