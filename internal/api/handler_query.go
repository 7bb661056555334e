package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

// TenantHeader names the header that selects the tenant of a query.
const TenantHeader = "tenant_id"

type queryRequest struct {
	View   string          `json:"view"`
	Params json.RawMessage `json:"params"`
	Spec   json.RawMessage `json:"spec"`
}

type queryResponse struct {
	Data any `json:"data"`
}

// query handles POST /api/v1/query.
func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
	if tenantID == "" {
		h.badRequest(w, r, "Missing tenant_id header")
		return
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.View == "" {
		h.badRequest(w, r, "invalid input: view is required")
		return
	}
	params, err := sqltemplate.DecodeParams(req.Params)
	if err != nil {
		h.badRequest(w, r, "invalid input: params must be an object")
		return
	}
	spec, err := sqltemplate.DecodeParams(req.Spec)
	if err != nil {
		h.badRequest(w, r, "invalid input: spec must be an object")
		return
	}

	data, err := h.svc.Query.Execute(r.Context(), tenantID, req.View, params, spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Data: data})
}

type executeTaskRequest struct {
	TaskType string               `json:"task_type"`
	Metadata *domain.TaskMetadata `json:"metadata"`
}

// executeTask handles POST /api/v1/executor/execute.
func (h *Handler) executeTask(w http.ResponseWriter, r *http.Request) {
	var req executeTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.TaskType == "" {
		h.badRequest(w, r, "invalid input: task_type is required")
		return
	}
	if req.Metadata == nil {
		h.badRequest(w, r, "invalid input: metadata is required")
		return
	}

	res, err := h.svc.Tasks.Execute(r.Context(), req.TaskType, req.Metadata)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
