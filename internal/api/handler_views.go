package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakehouse/internal/domain"
)

type createViewRequest struct {
	TenantID string `json:"tenant_id"`
	ViewCode string `json:"view_code"`
	ViewType string `json:"view_type"`
	ViewSQL  string `json:"view_sql"`
}

type updateViewRequest struct {
	ViewCode *string `json:"view_code"`
	ViewType *string `json:"view_type"`
	ViewSQL  *string `json:"view_sql"`
}

func (h *Handler) listViews(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Views.List(r.Context(), tenantFor(r, ""))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, viewToAPI))
}

func (h *Handler) createView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.TenantID = tenantFor(r, req.TenantID)
	v, err := h.svc.Views.Create(r.Context(), domain.CreateViewRequest(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewToAPI(*v))
}

func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Views.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToAPI(*v))
}

func (h *Handler) updateView(w http.ResponseWriter, r *http.Request) {
	var req updateViewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Views.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateViewRequest(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToAPI(*v))
}

func (h *Handler) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Views.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted("View"))
}
