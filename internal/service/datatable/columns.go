package datatable

import (
	"context"
	"fmt"
	"strings"

	"lakehouse/internal/domain"
)

// Columns returns a table's columns ordered by column_index.
func (s *Service) Columns(ctx context.Context, tableID string) ([]domain.DataTableColumn, error) {
	if _, err := s.Get(ctx, tableID); err != nil {
		return nil, err
	}
	return s.columns.ListByTable(ctx, tableID)
}

// CreateColumn declares one column.
func (s *Service) CreateColumn(ctx context.Context, req domain.CreateColumnRequest) (*domain.DataTableColumn, error) {
	if err := validateColumn(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, req.DataTableID); err != nil {
		return nil, err
	}
	out, err := s.columns.Create(ctx, columnFromRequest(req))
	if err != nil {
		return nil, fmt.Errorf("create column: %w", err)
	}
	return out, nil
}

// BatchCreateColumns declares several columns of one table, in order. All
// requests are validated before the first insert; inserts are not atomic.
func (s *Service) BatchCreateColumns(ctx context.Context, tableID string, reqs []domain.CreateColumnRequest) ([]domain.DataTableColumn, error) {
	if len(reqs) == 0 {
		return []domain.DataTableColumn{}, nil
	}
	for i := range reqs {
		reqs[i].DataTableID = tableID
		if err := validateColumn(reqs[i]); err != nil {
			return nil, err
		}
	}
	if _, err := s.Get(ctx, tableID); err != nil {
		return nil, err
	}

	out := make([]domain.DataTableColumn, 0, len(reqs))
	for _, req := range reqs {
		c, err := s.columns.Create(ctx, columnFromRequest(req))
		if err != nil {
			return nil, fmt.Errorf("create column %s: %w", req.Name, err)
		}
		out = append(out, *c)
	}
	return out, nil
}

// GetColumn returns one column.
func (s *Service) GetColumn(ctx context.Context, id string) (*domain.DataTableColumn, error) {
	c, err := s.columns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, c.DataTableID); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateColumn applies the set fields of req.
func (s *Service) UpdateColumn(ctx context.Context, id string, req domain.UpdateColumnRequest) (*domain.DataTableColumn, error) {
	c, err := s.GetColumn(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ColumnIndex != nil {
		c.ColumnIndex = *req.ColumnIndex
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.DataType != nil {
		c.DataType = *req.DataType
	}
	if req.Nullable != nil {
		c.Nullable = *req.Nullable
	}
	if req.DefaultValue != nil {
		c.DefaultValue = req.DefaultValue
	}
	if req.Partitioner != nil {
		c.Partitioner = *req.Partitioner
	}
	if strings.TrimSpace(c.Name) == "" {
		return nil, domain.ErrValidation("Name cannot be empty")
	}
	if strings.TrimSpace(c.DataType) == "" {
		return nil, domain.ErrValidation("Data type cannot be empty")
	}

	out, err := s.columns.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("update column: %w", err)
	}
	return out, nil
}

// DeleteColumn removes one column.
func (s *Service) DeleteColumn(ctx context.Context, id string) error {
	if _, err := s.GetColumn(ctx, id); err != nil {
		return err
	}
	return s.columns.Delete(ctx, id)
}

func validateColumn(req domain.CreateColumnRequest) error {
	switch {
	case strings.TrimSpace(req.DataTableID) == "":
		return domain.ErrValidation("Data table ID cannot be empty")
	case strings.TrimSpace(req.Name) == "":
		return domain.ErrValidation("Name cannot be empty")
	case strings.TrimSpace(req.DataType) == "":
		return domain.ErrValidation("Data type cannot be empty")
	case req.ColumnIndex < 0:
		return domain.ErrValidation("Column index cannot be negative")
	}
	return nil
}

func columnFromRequest(req domain.CreateColumnRequest) *domain.DataTableColumn {
	return &domain.DataTableColumn{
		DataTableID:  req.DataTableID,
		ColumnIndex:  req.ColumnIndex,
		Name:         req.Name,
		Description:  req.Description,
		DataType:     req.DataType,
		Nullable:     req.Nullable,
		DefaultValue: req.DefaultValue,
		Partitioner:  req.Partitioner,
	}
}
