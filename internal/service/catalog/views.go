// Package catalog manages stored views: tenant-owned bindings of a view code
// to a query strategy and its default SQL template.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lakehouse/internal/domain"
)

// StrategyLookup reports whether a strategy name is registered.
type StrategyLookup interface {
	Names() []string
}

// ViewService provides tenant-scoped CRUD over stored views.
type ViewService struct {
	repo       domain.ViewRepository
	strategies StrategyLookup
	logger     *slog.Logger
}

// NewViewService creates a ViewService. view_type values are checked
// against strategies.
func NewViewService(repo domain.ViewRepository, strategies StrategyLookup, logger *slog.Logger) *ViewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewService{repo: repo, strategies: strategies, logger: logger.With("component", "views")}
}

// List returns the views of a tenant ordered by code.
func (s *ViewService) List(ctx context.Context, tenantID string) ([]domain.View, error) {
	if tenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// Create stores a view. Codes are unique per tenant and may not shadow a
// registered strategy name.
func (s *ViewService) Create(ctx context.Context, req domain.CreateViewRequest) (*domain.View, error) {
	if req.TenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	v := &domain.View{
		TenantID: req.TenantID,
		ViewCode: strings.TrimSpace(req.ViewCode),
		ViewType: strings.TrimSpace(req.ViewType),
		ViewSQL:  req.ViewSQL,
	}
	if err := s.validate(v); err != nil {
		return nil, err
	}

	out, err := s.repo.Create(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("create view: %w", err)
	}
	s.logger.Info("view stored", "id", out.ID, "tenant_id", out.TenantID, "view_code", out.ViewCode)
	return out, nil
}

// Get returns a view.
func (s *ViewService) Get(ctx context.Context, id string) (*domain.View, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireTenant(ctx, v.TenantID); err != nil {
		return nil, err
	}
	return v, nil
}

// Update applies the set fields of req.
func (s *ViewService) Update(ctx context.Context, id string, req domain.UpdateViewRequest) (*domain.View, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ViewCode != nil {
		v.ViewCode = strings.TrimSpace(*req.ViewCode)
	}
	if req.ViewType != nil {
		v.ViewType = strings.TrimSpace(*req.ViewType)
	}
	if req.ViewSQL != nil {
		v.ViewSQL = *req.ViewSQL
	}
	if err := s.validate(v); err != nil {
		return nil, err
	}

	out, err := s.repo.Update(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("update view: %w", err)
	}
	return out, nil
}

// Delete removes a view.
func (s *ViewService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	return nil
}

func (s *ViewService) validate(v *domain.View) error {
	switch {
	case v.ViewCode == "":
		return domain.ErrValidation("View code cannot be empty")
	case v.ViewType == "":
		return domain.ErrValidation("View type cannot be empty")
	}
	known := s.strategies.Names()
	if contains(known, v.ViewCode) {
		return domain.ErrValidation("View code %s is reserved by a built-in strategy", v.ViewCode)
	}
	if !contains(known, v.ViewType) {
		return domain.ErrValidation("Unknown view type: %s", v.ViewType)
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
