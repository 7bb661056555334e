package datasource

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

// Pool is an open connection pool for one data source.
type Pool struct {
	Name       string
	DataSource domain.DataSource
	Dialect    sqltemplate.Dialect
	DB         *sql.DB
}

// Pools is the set of pools opened for one request, keyed by data source name.
// Pools are never shared across requests; callers must Close them.
type Pools struct {
	byName map[string]*Pool
}

// NewPools groups already-open pools. Later pools replace earlier ones with
// the same name.
func NewPools(pools ...*Pool) *Pools {
	p := &Pools{byName: make(map[string]*Pool, len(pools))}
	for _, pool := range pools {
		p.byName[pool.Name] = pool
	}
	return p
}

// Get returns the pool for a data source name.
func (p *Pools) Get(name string) (*Pool, bool) {
	pool, ok := p.byName[name]
	return pool, ok
}

// Names returns the data source names in lexicographic order.
func (p *Pools) Names() []string {
	names := make([]string, 0, len(p.byName))
	for n := range p.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of open pools.
func (p *Pools) Len() int { return len(p.byName) }

// Default returns the pool named name, or the lexicographically first pool
// when name is empty.
func (p *Pools) Default(name string) (*Pool, bool) {
	if name != "" {
		return p.Get(name)
	}
	names := p.Names()
	if len(names) == 0 {
		return nil, false
	}
	return p.byName[names[0]], true
}

// Close closes every pool and joins their errors.
func (p *Pools) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, pool := range p.byName {
		if err := pool.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TenantLister is the subset of domain.DataSourceRepository a Resolver needs.
type TenantLister interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.DataSource, error)
}

// Resolver opens pools for every data source of a tenant.
type Resolver struct {
	sources   TenantLister
	connector *Connector
	logger    *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(sources TenantLister, connector *Connector, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{sources: sources, connector: connector, logger: logger}
}

// Resolve opens one pool per data source registered for tenantID. Pools are
// opened concurrently; if any fails, the ones already open are closed and a
// *domain.DatabaseError naming the failing source is returned. A tenant with
// no data sources is also a *domain.DatabaseError.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) (*Pools, error) {
	sources, err := r.sources.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, domain.ErrDatabase(err, "Failed to load data sources for tenant %s", tenantID)
	}
	if len(sources) == 0 {
		return nil, domain.ErrDatabase(nil, "No data source available for tenant %s", tenantID)
	}
	return r.Open(ctx, sources)
}

// Open opens pools for the given data sources.
func (r *Resolver) Open(ctx context.Context, sources []domain.DataSource) (*Pools, error) {
	pools := NewPools()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, ds := range sources {
		g.Go(func() error {
			pool, err := r.connector.Open(gctx, ds)
			if err != nil {
				r.logger.Warn("data source connection failed",
					"data_source", ds.Name, "db_type", ds.DBType, "error", err)
				return domain.ErrDatabase(err, "Failed to connect to %s", ds.Name)
			}
			mu.Lock()
			pools.byName[ds.Name] = pool
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = pools.Close()
		return nil, err
	}
	return pools, nil
}
