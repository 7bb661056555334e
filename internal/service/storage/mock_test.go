package storage

import (
	"context"
	"errors"

	"lakehouse/internal/domain"
)

var errTest = errors.New("test error")

func ctxWithTenant(tenantID string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{Subject: "u1", TenantID: tenantID})
}

type mockDataSourceRepo struct {
	CreateFn       func(ctx context.Context, ds *domain.DataSource) (*domain.DataSource, error)
	GetByIDFn      func(ctx context.Context, id string) (*domain.DataSource, error)
	ListByTenantFn func(ctx context.Context, tenantID string) ([]domain.DataSource, error)
	UpdateFn       func(ctx context.Context, ds *domain.DataSource) (*domain.DataSource, error)
	DeleteFn       func(ctx context.Context, id string) error
}

func (m *mockDataSourceRepo) Create(ctx context.Context, ds *domain.DataSource) (*domain.DataSource, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, ds)
	}
	panic("unexpected call to Create")
}

func (m *mockDataSourceRepo) GetByID(ctx context.Context, id string) (*domain.DataSource, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to GetByID")
}

func (m *mockDataSourceRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.DataSource, error) {
	if m.ListByTenantFn != nil {
		return m.ListByTenantFn(ctx, tenantID)
	}
	panic("unexpected call to ListByTenant")
}

func (m *mockDataSourceRepo) ListAll(context.Context) ([]domain.DataSource, error) {
	panic("unexpected call to ListAll")
}

func (m *mockDataSourceRepo) Update(ctx context.Context, ds *domain.DataSource) (*domain.DataSource, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ds)
	}
	panic("unexpected call to Update")
}

func (m *mockDataSourceRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	panic("unexpected call to Delete")
}

type mockStorageRepo struct {
	CreateFn  func(ctx context.Context, st *domain.Storage) (*domain.Storage, error)
	GetByIDFn func(ctx context.Context, id string) (*domain.Storage, error)
	UpdateFn  func(ctx context.Context, st *domain.Storage) (*domain.Storage, error)
	DeleteFn  func(ctx context.Context, id string) error
}

func (m *mockStorageRepo) Create(ctx context.Context, st *domain.Storage) (*domain.Storage, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, st)
	}
	panic("unexpected call to Create")
}

func (m *mockStorageRepo) GetByID(ctx context.Context, id string) (*domain.Storage, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to GetByID")
}

func (m *mockStorageRepo) ListByTenant(context.Context, string) ([]domain.Storage, error) {
	panic("unexpected call to ListByTenant")
}

func (m *mockStorageRepo) ListAll(context.Context) ([]domain.Storage, error) {
	panic("unexpected call to ListAll")
}

func (m *mockStorageRepo) Update(ctx context.Context, st *domain.Storage) (*domain.Storage, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, st)
	}
	panic("unexpected call to Update")
}

func (m *mockStorageRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	panic("unexpected call to Delete")
}
