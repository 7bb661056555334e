package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakehouse/internal/domain"
)

type createDataSourceRequest struct {
	Name             string         `json:"name"`
	DBType           string         `json:"db_type"`
	ConnectionConfig map[string]any `json:"connection_config"`
	TenantID         string         `json:"tenant_id"`
}

type updateDataSourceRequest struct {
	Name             *string        `json:"name"`
	DBType           *string        `json:"db_type"`
	ConnectionConfig map[string]any `json:"connection_config"`
}

func (h *Handler) listDataSources(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.DataSources.List(r.Context(), tenantFor(r, ""))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, dataSourceToAPI))
}

func (h *Handler) createDataSource(w http.ResponseWriter, r *http.Request) {
	var req createDataSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	ds, err := h.svc.DataSources.Create(r.Context(), domain.CreateDataSourceRequest{
		Name:             req.Name,
		DBType:           req.DBType,
		ConnectionConfig: req.ConnectionConfig,
		TenantID:         tenantFor(r, req.TenantID),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dataSourceToAPI(*ds))
}

func (h *Handler) getDataSource(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.DataSources.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataSourceToAPI(*ds))
}

func (h *Handler) updateDataSource(w http.ResponseWriter, r *http.Request) {
	var req updateDataSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	ds, err := h.svc.DataSources.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateDataSourceRequest{
		Name:             req.Name,
		DBType:           req.DBType,
		ConnectionConfig: req.ConnectionConfig,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataSourceToAPI(*ds))
}

func (h *Handler) deleteDataSource(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DataSources.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted("Data source"))
}

type createStorageRequest struct {
	Name             string         `json:"name"`
	StorageType      string         `json:"storage_type"`
	UploadEndpoint   string         `json:"upload_endpoint"`
	DownloadEndpoint string         `json:"download_endpoint"`
	AuthConfig       map[string]any `json:"auth_config"`
	TenantID         string         `json:"tenant_id"`
}

type updateStorageRequest struct {
	Name             *string        `json:"name"`
	StorageType      *string        `json:"storage_type"`
	UploadEndpoint   *string        `json:"upload_endpoint"`
	DownloadEndpoint *string        `json:"download_endpoint"`
	AuthConfig       map[string]any `json:"auth_config"`
}

func (h *Handler) listStorages(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Storages.List(r.Context(), tenantFor(r, ""))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, storageToAPI))
}

func (h *Handler) createStorage(w http.ResponseWriter, r *http.Request) {
	var req createStorageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	st, err := h.svc.Storages.Create(r.Context(), domain.CreateStorageRequest{
		Name:             req.Name,
		StorageType:      req.StorageType,
		UploadEndpoint:   req.UploadEndpoint,
		DownloadEndpoint: req.DownloadEndpoint,
		AuthConfig:       req.AuthConfig,
		TenantID:         tenantFor(r, req.TenantID),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, storageToAPI(*st))
}

func (h *Handler) getStorage(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Storages.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storageToAPI(*st))
}

func (h *Handler) updateStorage(w http.ResponseWriter, r *http.Request) {
	var req updateStorageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	st, err := h.svc.Storages.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateStorageRequest{
		Name:             req.Name,
		StorageType:      req.StorageType,
		UploadEndpoint:   req.UploadEndpoint,
		DownloadEndpoint: req.DownloadEndpoint,
		AuthConfig:       req.AuthConfig,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storageToAPI(*st))
}

func (h *Handler) deleteStorage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Storages.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted("Storage"))
}
