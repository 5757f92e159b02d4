package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/httputil"
	"github.com/ignite/listpilot/internal/service/list"
)

type createListRequest struct {
	Name       string                `json:"name"`
	Visibility domain.ListVisibility `json:"visibility"`
	OptinMode  domain.OptinMode      `json:"optin_mode"`
	Tags       []string              `json:"tags"`
	Owner      string                `json:"owner"`
}

func (h *Handlers) CreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	l, err := h.lists.Create(r.Context(), req.Name, req.Visibility, req.OptinMode, req.Tags, req.Owner)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	httputil.Created(w, l)
}

func (h *Handlers) GetList(w http.ResponseWriter, r *http.Request) {
	l, err := h.lists.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, l)
}

func (h *Handlers) ListLists(w http.ResponseWriter, r *http.Request) {
	f := list.ListFilter{
		Visibility: r.URL.Query().Get("visibility"),
		Tag:        r.URL.Query().Get("tag"),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	}
	lists, total, err := h.lists.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, pageResponse{Items: lists, Total: total})
}

func (h *Handlers) DeleteList(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}
