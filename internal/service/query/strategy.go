// Package query executes named query strategies against a tenant's external
// data sources and normalizes their results into a tabular JSON shape.
package query

import (
	"context"
	"log/slog"
	"sort"

	"lakehouse/internal/datasource"
)

// QueryContext carries everything a strategy needs for one request. It is
// created per request and discarded once the strategy returns.
//
//nolint:revive // Name chosen for clarity across package boundaries
type QueryContext struct {
	TenantID string
	View     string
	Params   map[string]any
	Spec     map[string]any
	Pools    *datasource.Pools
	Logger   *slog.Logger
}

// Strategy executes one kind of view.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, qc *QueryContext) (any, error)
}

// Registry maps view names to strategies. It is built once and read-only
// afterwards, so it is safe for concurrent use.
type Registry struct {
	byName map[string]Strategy
}

// NewRegistry builds a registry from an explicit list. A later strategy
// replaces an earlier one with the same name.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{byName: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.byName[s.Name()] = s
	}
	return r
}

// DefaultRegistry registers the tabular strategy under its canonical names.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTabularStrategy(ViewTabular),
		NewTabularStrategy(ViewComparableCard),
	)
}

// Get returns the strategy registered for name.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Names returns the registered view names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
