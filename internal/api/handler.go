// Package api provides the HTTP handlers of the lakehouse REST API.
package api

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"lakehouse/internal/domain"
)

// QueryService runs a view for a tenant.
type QueryService interface {
	Execute(ctx context.Context, tenantID, view string, params, spec map[string]any) (any, error)
}

// TaskDispatcher runs one task by type.
type TaskDispatcher interface {
	Execute(ctx context.Context, taskType string, meta *domain.TaskMetadata) (*domain.ExecutionResult, error)
}

// DataSourceService manages data source profiles.
type DataSourceService interface {
	List(ctx context.Context, tenantID string) ([]domain.DataSource, error)
	Create(ctx context.Context, req domain.CreateDataSourceRequest) (*domain.DataSource, error)
	Get(ctx context.Context, id string) (*domain.DataSource, error)
	Update(ctx context.Context, id string, req domain.UpdateDataSourceRequest) (*domain.DataSource, error)
	Delete(ctx context.Context, id string) error
}

// StorageService manages storage profiles.
type StorageService interface {
	List(ctx context.Context, tenantID string) ([]domain.Storage, error)
	Create(ctx context.Context, req domain.CreateStorageRequest) (*domain.Storage, error)
	Get(ctx context.Context, id string) (*domain.Storage, error)
	Update(ctx context.Context, id string, req domain.UpdateStorageRequest) (*domain.Storage, error)
	Delete(ctx context.Context, id string) error
}

// DataTableService manages data tables, their columns and usage records,
// and imports spreadsheets into them.
type DataTableService interface {
	List(ctx context.Context, tenantID string) ([]domain.DataTable, error)
	Create(ctx context.Context, req domain.CreateDataTableRequest) (*domain.DataTable, error)
	Get(ctx context.Context, id string) (*domain.DataTable, error)
	Details(ctx context.Context, id string) (*domain.DataTableDetails, error)
	Update(ctx context.Context, id string, req domain.UpdateDataTableRequest) (*domain.DataTable, error)
	Delete(ctx context.Context, id string) error
	Upload(ctx context.Context, tableID string, file io.Reader, partitions map[string]string) (int, error)

	Columns(ctx context.Context, tableID string) ([]domain.DataTableColumn, error)
	CreateColumn(ctx context.Context, req domain.CreateColumnRequest) (*domain.DataTableColumn, error)
	BatchCreateColumns(ctx context.Context, tableID string, reqs []domain.CreateColumnRequest) ([]domain.DataTableColumn, error)
	GetColumn(ctx context.Context, id string) (*domain.DataTableColumn, error)
	UpdateColumn(ctx context.Context, id string, req domain.UpdateColumnRequest) (*domain.DataTableColumn, error)
	DeleteColumn(ctx context.Context, id string) error

	UsageByTable(ctx context.Context, tableID string) (*domain.DataTableUsage, error)
	UpsertUsage(ctx context.Context, req domain.UpsertUsageRequest) (*domain.DataTableUsage, error)
	GetUsage(ctx context.Context, id string) (*domain.DataTableUsage, error)
	UpdateUsage(ctx context.Context, id string, req domain.UpdateUsageRequest) (*domain.DataTableUsage, error)
	DeleteUsage(ctx context.Context, id string) error
}

// ViewService manages stored views.
type ViewService interface {
	List(ctx context.Context, tenantID string) ([]domain.View, error)
	Create(ctx context.Context, req domain.CreateViewRequest) (*domain.View, error)
	Get(ctx context.Context, id string) (*domain.View, error)
	Update(ctx context.Context, id string, req domain.UpdateViewRequest) (*domain.View, error)
	Delete(ctx context.Context, id string) error
}

// AuthService logs users in.
type AuthService interface {
	Login(ctx context.Context, nickname, password string) (*domain.AuthToken, error)
}

// Services bundles the services the handlers call.
type Services struct {
	Query       QueryService
	Tasks       TaskDispatcher
	DataSources DataSourceService
	Storages    StorageService
	DataTables  DataTableService
	Views       ViewService
	Auth        AuthService
}

// Handler serves the /api/v1 routes.
type Handler struct {
	svc            Services
	maxUploadBytes int64
	logger         *slog.Logger
}

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 50 << 20

// NewHandler creates a Handler.
func NewHandler(svc Services, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger.With("component", "api")}
}

// PublicRoutes mounts the routes that need no token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
}

// Routes mounts the authenticated /api/v1 routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/query", h.query)
	r.Post("/executor/execute", h.executeTask)

	r.Route("/data-sources", func(r chi.Router) {
		r.Get("/", h.listDataSources)
		r.Post("/", h.createDataSource)
		r.Get("/{id}", h.getDataSource)
		r.Put("/{id}", h.updateDataSource)
		r.Delete("/{id}", h.deleteDataSource)
	})
	r.Route("/storages", func(r chi.Router) {
		r.Get("/", h.listStorages)
		r.Post("/", h.createStorage)
		r.Get("/{id}", h.getStorage)
		r.Put("/{id}", h.updateStorage)
		r.Delete("/{id}", h.deleteStorage)
	})
	r.Route("/data-tables", func(r chi.Router) {
		r.Get("/", h.listDataTables)
		r.Post("/", h.createDataTable)
		r.Get("/{id}", h.getDataTable)
		r.Get("/{id}/details", h.getDataTableDetails)
		r.Put("/{id}", h.updateDataTable)
		r.Delete("/{id}", h.deleteDataTable)
		r.Post("/{id}/upload", h.uploadDataTable)
	})
	r.Route("/data-table-columns", func(r chi.Router) {
		r.Get("/", h.listColumns)
		r.Post("/", h.createColumn)
		r.Post("/batch", h.batchCreateColumns)
		r.Get("/{id}", h.getColumn)
		r.Put("/{id}", h.updateColumn)
		r.Delete("/{id}", h.deleteColumn)
	})
	r.Route("/data-table-usages", func(r chi.Router) {
		r.Get("/by-table", h.usageByTable)
		r.Post("/upsert", h.upsertUsage)
		r.Get("/{id}", h.getUsage)
		r.Put("/{id}", h.updateUsage)
		r.Delete("/{id}", h.deleteUsage)
	})
	r.Route("/views", func(r chi.Router) {
		r.Get("/", h.listViews)
		r.Post("/", h.createView)
		r.Get("/{id}", h.getView)
		r.Put("/{id}", h.updateView)
		r.Delete("/{id}", h.deleteView)
	})
}
