package datatable

import (
	"context"
	"errors"
	"fmt"

	"lakehouse/internal/domain"
)

// UsageByTable returns the usage record of a table.
func (s *Service) UsageByTable(ctx context.Context, tableID string) (*domain.DataTableUsage, error) {
	if _, err := s.Get(ctx, tableID); err != nil {
		return nil, err
	}
	return s.usages.GetByTable(ctx, tableID)
}

// UpsertUsage replaces a table's usage statistics. The record id is derived
// from the table id, so repeated upserts update one row.
func (s *Service) UpsertUsage(ctx context.Context, req domain.UpsertUsageRequest) (*domain.DataTableUsage, error) {
	if req.DataTableID == "" {
		return nil, domain.ErrValidation("Data table ID cannot be empty")
	}
	if req.RowCount < 0 || req.PartitionCount < 0 || req.StorageSize < 0 {
		return nil, domain.ErrValidation("usage statistics cannot be negative")
	}
	if _, err := s.Get(ctx, req.DataTableID); err != nil {
		return nil, err
	}
	out, err := s.usages.Upsert(ctx, &domain.DataTableUsage{
		ID:             domain.UsageIDForTable(req.DataTableID),
		DataTableID:    req.DataTableID,
		RowCount:       req.RowCount,
		PartitionCount: req.PartitionCount,
		StorageSize:    req.StorageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert usage: %w", err)
	}
	return out, nil
}

// GetUsage returns a usage record by id.
func (s *Service) GetUsage(ctx context.Context, id string) (*domain.DataTableUsage, error) {
	u, err := s.usages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, u.DataTableID); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUsage applies the set fields of req.
func (s *Service) UpdateUsage(ctx context.Context, id string, req domain.UpdateUsageRequest) (*domain.DataTableUsage, error) {
	u, err := s.GetUsage(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RowCount != nil {
		u.RowCount = *req.RowCount
	}
	if req.PartitionCount != nil {
		u.PartitionCount = *req.PartitionCount
	}
	if req.StorageSize != nil {
		u.StorageSize = *req.StorageSize
	}
	out, err := s.usages.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("update usage: %w", err)
	}
	return out, nil
}

// DeleteUsage removes a usage record.
func (s *Service) DeleteUsage(ctx context.Context, id string) error {
	if _, err := s.GetUsage(ctx, id); err != nil {
		return err
	}
	return s.usages.Delete(ctx, id)
}

func (s *Service) optionalUsage(ctx context.Context, tableID string) (*domain.DataTableUsage, error) {
	u, err := s.usages.GetByTable(ctx, tableID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usage: %w", err)
	}
	return u, nil
}
