package query

import (
	"context"
	"errors"
	"log/slog"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
)

// PoolResolver opens the data source pools of a tenant.
type PoolResolver interface {
	Resolve(ctx context.Context, tenantID string) (*datasource.Pools, error)
}

// ViewLookup finds stored views by code.
type ViewLookup interface {
	GetByCode(ctx context.Context, tenantID, code string) (*domain.View, error)
}

// Service resolves a view to a strategy and runs it with freshly opened pools.
type Service struct {
	registry *Registry
	resolver PoolResolver
	views    ViewLookup
	logger   *slog.Logger
}

// NewService creates a Service. views may be nil to disable stored views.
func NewService(registry *Registry, resolver PoolResolver, views ViewLookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		resolver: resolver,
		views:    views,
		logger:   logger.With("component", "query"),
	}
}

// Execute runs view for tenantID. A view that is neither a registered
// strategy nor a stored view of the tenant is a *domain.StrategyNotFoundError.
// Pools opened for the request are closed before Execute returns.
func (s *Service) Execute(ctx context.Context, tenantID, view string, params, spec map[string]any) (any, error) {
	if err := domain.RequireTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	strategy, spec, err := s.resolveView(ctx, tenantID, view, spec)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}

	pools, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := pools.Close(); cerr != nil {
			s.logger.Warn("closing data source pools", "tenant_id", tenantID, "error", cerr)
		}
	}()

	logger := s.logger.With("tenant_id", tenantID, "view", view)
	result, err := strategy.Execute(ctx, &QueryContext{
		TenantID: tenantID,
		View:     view,
		Params:   params,
		Spec:     spec,
		Pools:    pools,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("query failed", "error", err)
		return nil, err
	}
	return result, nil
}

// resolveView returns the strategy for view and the effective spec. Stored
// views supply their view_sql as spec.sql when the request omits it.
func (s *Service) resolveView(ctx context.Context, tenantID, view string, spec map[string]any) (Strategy, map[string]any, error) {
	if strategy, ok := s.registry.Get(view); ok {
		return strategy, spec, nil
	}
	if s.views == nil {
		return nil, nil, &domain.StrategyNotFoundError{View: view}
	}

	stored, err := s.views.GetByCode(ctx, tenantID, view)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil, &domain.StrategyNotFoundError{View: view}
		}
		return nil, nil, err
	}
	strategy, ok := s.registry.Get(stored.ViewType)
	if !ok {
		return nil, nil, &domain.StrategyNotFoundError{View: view}
	}

	effective := make(map[string]any, len(spec)+1)
	for k, v := range spec {
		effective[k] = v
	}
	if _, ok := effective["sql"]; !ok && stored.ViewSQL != "" {
		effective["sql"] = stored.ViewSQL
	}
	return strategy, effective, nil
}
