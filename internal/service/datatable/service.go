// Package datatable manages declared data tables and imports spreadsheets
// into them partition by partition.
package datatable

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
)

// DataSourceGetter loads a data source by id.
type DataSourceGetter interface {
	GetByID(ctx context.Context, id string) (*domain.DataSource, error)
}

// Service provides data table CRUD and the partitioned upload pipeline.
type Service struct {
	tables    domain.DataTableRepository
	columns   domain.DataTableColumnRepository
	usages    domain.DataTableUsageRepository
	sources   DataSourceGetter
	connector *datasource.Connector
	logger    *slog.Logger
}

// NewService creates a Service.
func NewService(
	tables domain.DataTableRepository,
	columns domain.DataTableColumnRepository,
	usages domain.DataTableUsageRepository,
	sources DataSourceGetter,
	connector *datasource.Connector,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tables:    tables,
		columns:   columns,
		usages:    usages,
		sources:   sources,
		connector: connector,
		logger:    logger.With("component", "datatable"),
	}
}

// List returns the data tables of a tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]domain.DataTable, error) {
	if tenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.tables.ListByTenant(ctx, tenantID)
}

// Create declares a new data table. Names are unique per tenant and data source.
func (s *Service) Create(ctx context.Context, req domain.CreateDataTableRequest) (*domain.DataTable, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, domain.ErrValidation("Name cannot be empty")
	case !validTableName(req.Name):
		return nil, domain.ErrValidation("invalid table name %q: expected table or schema.table", req.Name)
	case strings.TrimSpace(req.DataSourceID) == "":
		return nil, domain.ErrValidation("Data source ID cannot be empty")
	case req.TenantID == "":
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}

	ds, err := s.sources.GetByID(ctx, req.DataSourceID)
	if err != nil {
		return nil, err
	}
	if ds.TenantID != req.TenantID {
		return nil, domain.ErrValidation("data source %s does not belong to tenant %s", req.DataSourceID, req.TenantID)
	}

	out, err := s.tables.Create(ctx, &domain.DataTable{
		TenantID:     req.TenantID,
		DataSourceID: req.DataSourceID,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create data table: %w", err)
	}
	return out, nil
}

// Get returns a data table.
func (s *Service) Get(ctx context.Context, id string) (*domain.DataTable, error) {
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireTenant(ctx, t.TenantID); err != nil {
		return nil, err
	}
	return t, nil
}

// Details returns a table with its columns and usage record, if any.
func (s *Service) Details(ctx context.Context, id string) (*domain.DataTableDetails, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cols, err := s.columns.ListByTable(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	usage, err := s.optionalUsage(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.DataTableDetails{Table: *t, Columns: cols, Usage: usage}, nil
}

// Update changes the name or description of a table.
func (s *Service) Update(ctx context.Context, id string, req domain.UpdateDataTableRequest) (*domain.DataTable, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, domain.ErrValidation("Name cannot be empty")
		}
		if !validTableName(*req.Name) {
			return nil, domain.ErrValidation("invalid table name %q: expected table or schema.table", *req.Name)
		}
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	out, err := s.tables.Update(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("update data table: %w", err)
	}
	return out, nil
}

// Delete removes a table's columns, then its usage record, then the table.
// The steps are separate statements: a failure part way leaves the earlier
// deletions in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.columns.DeleteByTable(ctx, t.ID); err != nil {
		return fmt.Errorf("delete columns: %w", err)
	}
	if err := s.usages.DeleteByTable(ctx, t.ID); err != nil {
		return fmt.Errorf("delete usage: %w", err)
	}
	if err := s.tables.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("delete data table: %w", err)
	}
	return nil
}

// validTableName accepts "table" and "schema.table" with non-blank parts.
func validTableName(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}
