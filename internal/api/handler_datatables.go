package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lakehouse/internal/domain"
)

// partitionFieldPrefix marks multipart fields carrying partition values.
const partitionFieldPrefix = "partition_"

type createDataTableRequest struct {
	TenantID     string  `json:"tenant_id"`
	DataSourceID string  `json:"data_source_id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
}

type updateDataTableRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) listDataTables(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.DataTables.List(r.Context(), tenantFor(r, ""))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, dataTableToAPI))
}

func (h *Handler) createDataTable(w http.ResponseWriter, r *http.Request) {
	var req createDataTableRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.DataTables.Create(r.Context(), domain.CreateDataTableRequest{
		TenantID:     tenantFor(r, req.TenantID),
		DataSourceID: req.DataSourceID,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dataTableToAPI(*t))
}

func (h *Handler) getDataTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.DataTables.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataTableToAPI(*t))
}

func (h *Handler) getDataTableDetails(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.DataTables.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailsToAPI(*d))
}

func (h *Handler) updateDataTable(w http.ResponseWriter, r *http.Request) {
	var req updateDataTableRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.DataTables.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateDataTableRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataTableToAPI(*t))
}

func (h *Handler) deleteDataTable(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DataTables.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted("Data table"))
}

type uploadResponse struct {
	Message      string `json:"message"`
	RowsInserted int    `json:"rows_inserted"`
}

// uploadDataTable handles POST /api/v1/data-tables/{id}/upload. The form
// carries the workbook in "file" and one partition_<column> field per
// partition column.
func (h *Handler) uploadDataTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.badRequest(w, r, "File too large: limit is %d bytes", h.maxUploadBytes)
			return
		}
		h.badRequest(w, r, "invalid input: %v", err)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, _, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, r, "Missing file")
		return
	}
	defer file.Close() //nolint:errcheck

	partitions := map[string]string{}
	for key, values := range r.MultipartForm.Value {
		col, ok := strings.CutPrefix(key, partitionFieldPrefix)
		if !ok || col == "" || len(values) == 0 {
			continue
		}
		partitions[col] = values[0]
	}

	n, err := h.svc.DataTables.Upload(r.Context(), chi.URLParam(r, "id"), file, partitions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: "Data uploaded successfully", RowsInserted: n})
}

type columnRequest struct {
	DataTableID  string  `json:"data_table_id"`
	ColumnIndex  int     `json:"column_index"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DataType     string  `json:"data_type"`
	Nullable     *bool   `json:"nullable"`
	DefaultValue *string `json:"default_value"`
	Partitioner  bool    `json:"partitioner"`
}

func (c columnRequest) toDomain() domain.CreateColumnRequest {
	nullable := true
	if c.Nullable != nil {
		nullable = *c.Nullable
	}
	return domain.CreateColumnRequest{
		DataTableID:  c.DataTableID,
		ColumnIndex:  c.ColumnIndex,
		Name:         c.Name,
		Description:  c.Description,
		DataType:     c.DataType,
		Nullable:     nullable,
		DefaultValue: c.DefaultValue,
		Partitioner:  c.Partitioner,
	}
}

type batchColumnsRequest struct {
	DataTableID string          `json:"data_table_id"`
	Columns     []columnRequest `json:"columns"`
}

type updateColumnRequest struct {
	ColumnIndex  *int    `json:"column_index"`
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DataType     *string `json:"data_type"`
	Nullable     *bool   `json:"nullable"`
	DefaultValue *string `json:"default_value"`
	Partitioner  *bool   `json:"partitioner"`
}

func (h *Handler) listColumns(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table_id")
	if tableID == "" {
		h.badRequest(w, r, "Missing table_id query parameter")
		return
	}
	cols, err := h.svc.DataTables.Columns(r.Context(), tableID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columnsToAPI(cols))
}

func (h *Handler) createColumn(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.DataTables.CreateColumn(r.Context(), req.toDomain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, columnToAPI(*c))
}

func (h *Handler) batchCreateColumns(w http.ResponseWriter, r *http.Request) {
	var req batchColumnsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.DataTableID == "" {
		h.badRequest(w, r, "Data table ID cannot be empty")
		return
	}
	reqs := make([]domain.CreateColumnRequest, 0, len(req.Columns))
	for _, c := range req.Columns {
		reqs = append(reqs, c.toDomain())
	}
	cols, err := h.svc.DataTables.BatchCreateColumns(r.Context(), req.DataTableID, reqs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, columnsToAPI(cols))
}

func (h *Handler) getColumn(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.DataTables.GetColumn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columnToAPI(*c))
}

func (h *Handler) updateColumn(w http.ResponseWriter, r *http.Request) {
	var req updateColumnRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.DataTables.UpdateColumn(r.Context(), chi.URLParam(r, "id"), domain.UpdateColumnRequest{
		ColumnIndex:  req.ColumnIndex,
		Name:         req.Name,
		Description:  req.Description,
		DataType:     req.DataType,
		Nullable:     req.Nullable,
		DefaultValue: req.DefaultValue,
		Partitioner:  req.Partitioner,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columnToAPI(*c))
}

func (h *Handler) deleteColumn(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DataTables.DeleteColumn(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted("Column"))
}

type upsertUsageRequest struct {
	DataTableID    string `json:"data_table_id"`
	RowCount       int64  `json:"row_count"`
	PartitionCount int64  `json:"partition_count"`
	StorageSize    int64  `json:"storage_size"`
}

type updateUsageRequest struct {
	RowCount       *int64 `json:"row_count"`
	PartitionCount *int64 `json:"partition_count"`
	StorageSize    *int64 `json:"storage_size"`
}

func (h *Handler) usageByTable(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table_id")
	if tableID == "" {
		h.badRequest(w, r, "Missing table_id query parameter")
		return
	}
	u, err := h.svc.DataTables.UsageByTable(r.Context(), tableID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToAPI(*u))
}

func (h *Handler) upsertUsage(w http.ResponseWriter, r *http.Request) {
	var req upsertUsageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.DataTables.UpsertUsage(r.Context(), domain.UpsertUsageRequest(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToAPI(*u))
}

func (h *Handler) getUsage(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.DataTables.GetUsage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToAPI(*u))
}

func (h *Handler) updateUsage(w http.ResponseWriter, r *http.Request) {
	var req updateUsageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.DataTables.UpdateUsage(r.Context(), chi.URLParam(r, "id"), domain.UpdateUsageRequest(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToAPI(*u))
}

func (h *Handler) deleteUsage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DataTables.DeleteUsage(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted("Usage record"))
}
