// Package storage manages the connection profiles a tenant registers: data
// sources (external databases) and storages (object stores).
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

// DataSourceService provides tenant-scoped CRUD over data source profiles.
type DataSourceService struct {
	repo   domain.DataSourceRepository
	logger *slog.Logger
}

// NewDataSourceService creates a DataSourceService.
func NewDataSourceService(repo domain.DataSourceRepository, logger *slog.Logger) *DataSourceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataSourceService{repo: repo, logger: logger.With("component", "datasource")}
}

// List returns the data sources of a tenant.
func (s *DataSourceService) List(ctx context.Context, tenantID string) ([]domain.DataSource, error) {
	if tenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// Create validates and registers a data source. The connection config must
// parse for the declared db_type.
func (s *DataSourceService) Create(ctx context.Context, req domain.CreateDataSourceRequest) (*domain.DataSource, error) {
	if req.TenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	ds := &domain.DataSource{
		Name:             strings.TrimSpace(req.Name),
		DBType:           req.DBType,
		ConnectionConfig: req.ConnectionConfig,
		TenantID:         req.TenantID,
	}
	if err := validateDataSource(ds); err != nil {
		return nil, err
	}

	out, err := s.repo.Create(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("create data source: %w", err)
	}
	s.logger.Info("data source registered", "id", out.ID, "tenant_id", out.TenantID, "db_type", out.DBType)
	return out, nil
}

// Get returns a data source.
func (s *DataSourceService) Get(ctx context.Context, id string) (*domain.DataSource, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireTenant(ctx, ds.TenantID); err != nil {
		return nil, err
	}
	return ds, nil
}

// Update applies the set fields of req. A new connection config replaces
// the old one as a whole.
func (s *DataSourceService) Update(ctx context.Context, id string, req domain.UpdateDataSourceRequest) (*domain.DataSource, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		ds.Name = strings.TrimSpace(*req.Name)
	}
	if req.DBType != nil {
		ds.DBType = *req.DBType
	}
	if req.ConnectionConfig != nil {
		ds.ConnectionConfig = req.ConnectionConfig
	}
	if err := validateDataSource(ds); err != nil {
		return nil, err
	}

	out, err := s.repo.Update(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("update data source: %w", err)
	}
	return out, nil
}

// Delete removes a data source.
func (s *DataSourceService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete data source: %w", err)
	}
	s.logger.Info("data source deleted", "id", id)
	return nil
}

func validateDataSource(ds *domain.DataSource) error {
	if ds.Name == "" {
		return domain.ErrValidation("Name cannot be empty")
	}
	d, err := sqltemplate.ParseDialect(ds.DBType)
	if err != nil {
		return domain.ErrValidation("Unsupported database type: %s", ds.DBType)
	}
	if _, err := datasource.ParseConnConfig(d, ds.ConnectionConfig); err != nil {
		return err
	}
	return nil
}
