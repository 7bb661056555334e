package api

import (
	"context"
	"errors"
	"io"

	"lakehouse/internal/domain"
	"lakehouse/internal/middleware"
)

var errTest = errors.New("boom")

type mockQuery struct {
	ExecuteFn func(ctx context.Context, tenantID, view string, params, spec map[string]any) (any, error)
}

func (m *mockQuery) Execute(ctx context.Context, tenantID, view string, params, spec map[string]any) (any, error) {
	if m.ExecuteFn == nil {
		panic("mockQuery.Execute called but not configured")
	}
	return m.ExecuteFn(ctx, tenantID, view, params, spec)
}

type mockTasks struct {
	ExecuteFn func(ctx context.Context, taskType string, meta *domain.TaskMetadata) (*domain.ExecutionResult, error)
}

func (m *mockTasks) Execute(ctx context.Context, taskType string, meta *domain.TaskMetadata) (*domain.ExecutionResult, error) {
	if m.ExecuteFn == nil {
		panic("mockTasks.Execute called but not configured")
	}
	return m.ExecuteFn(ctx, taskType, meta)
}

type mockDataSources struct {
	ListFn   func(ctx context.Context, tenantID string) ([]domain.DataSource, error)
	CreateFn func(ctx context.Context, req domain.CreateDataSourceRequest) (*domain.DataSource, error)
	GetFn    func(ctx context.Context, id string) (*domain.DataSource, error)
}

func (m *mockDataSources) List(ctx context.Context, tenantID string) ([]domain.DataSource, error) {
	if m.ListFn == nil {
		panic("mockDataSources.List called but not configured")
	}
	return m.ListFn(ctx, tenantID)
}

func (m *mockDataSources) Create(ctx context.Context, req domain.CreateDataSourceRequest) (*domain.DataSource, error) {
	if m.CreateFn == nil {
		panic("mockDataSources.Create called but not configured")
	}
	return m.CreateFn(ctx, req)
}

func (m *mockDataSources) Get(ctx context.Context, id string) (*domain.DataSource, error) {
	if m.GetFn == nil {
		panic("mockDataSources.Get called but not configured")
	}
	return m.GetFn(ctx, id)
}

func (m *mockDataSources) Update(context.Context, string, domain.UpdateDataSourceRequest) (*domain.DataSource, error) {
	panic("mockDataSources.Update called but not configured")
}

func (m *mockDataSources) Delete(context.Context, string) error {
	panic("mockDataSources.Delete called but not configured")
}

type mockDataTables struct {
	DeleteFn       func(ctx context.Context, id string) error
	UploadFn       func(ctx context.Context, tableID string, file io.Reader, partitions map[string]string) (int, error)
	BatchColumnsFn func(ctx context.Context, tableID string, reqs []domain.CreateColumnRequest) ([]domain.DataTableColumn, error)
}

func (m *mockDataTables) List(context.Context, string) ([]domain.DataTable, error) {
	panic("mockDataTables.List called but not configured")
}

func (m *mockDataTables) Create(context.Context, domain.CreateDataTableRequest) (*domain.DataTable, error) {
	panic("mockDataTables.Create called but not configured")
}

func (m *mockDataTables) Get(context.Context, string) (*domain.DataTable, error) {
	panic("mockDataTables.Get called but not configured")
}

func (m *mockDataTables) Details(context.Context, string) (*domain.DataTableDetails, error) {
	panic("mockDataTables.Details called but not configured")
}

func (m *mockDataTables) Update(context.Context, string, domain.UpdateDataTableRequest) (*domain.DataTable, error) {
	panic("mockDataTables.Update called but not configured")
}

func (m *mockDataTables) Delete(ctx context.Context, id string) error {
	if m.DeleteFn == nil {
		panic("mockDataTables.Delete called but not configured")
	}
	return m.DeleteFn(ctx, id)
}

func (m *mockDataTables) Upload(ctx context.Context, tableID string, file io.Reader, partitions map[string]string) (int, error) {
	if m.UploadFn == nil {
		panic("mockDataTables.Upload called but not configured")
	}
	return m.UploadFn(ctx, tableID, file, partitions)
}

func (m *mockDataTables) Columns(context.Context, string) ([]domain.DataTableColumn, error) {
	panic("mockDataTables.Columns called but not configured")
}

func (m *mockDataTables) CreateColumn(context.Context, domain.CreateColumnRequest) (*domain.DataTableColumn, error) {
	panic("mockDataTables.CreateColumn called but not configured")
}

func (m *mockDataTables) BatchCreateColumns(ctx context.Context, tableID string, reqs []domain.CreateColumnRequest) ([]domain.DataTableColumn, error) {
	if m.BatchColumnsFn == nil {
		panic("mockDataTables.BatchCreateColumns called but not configured")
	}
	return m.BatchColumnsFn(ctx, tableID, reqs)
}

func (m *mockDataTables) GetColumn(context.Context, string) (*domain.DataTableColumn, error) {
	panic("mockDataTables.GetColumn called but not configured")
}

func (m *mockDataTables) UpdateColumn(context.Context, string, domain.UpdateColumnRequest) (*domain.DataTableColumn, error) {
	panic("mockDataTables.UpdateColumn called but not configured")
}

func (m *mockDataTables) DeleteColumn(context.Context, string) error {
	panic("mockDataTables.DeleteColumn called but not configured")
}

func (m *mockDataTables) UsageByTable(context.Context, string) (*domain.DataTableUsage, error) {
	panic("mockDataTables.UsageByTable called but not configured")
}

func (m *mockDataTables) UpsertUsage(context.Context, domain.UpsertUsageRequest) (*domain.DataTableUsage, error) {
	panic("mockDataTables.UpsertUsage called but not configured")
}

func (m *mockDataTables) GetUsage(context.Context, string) (*domain.DataTableUsage, error) {
	panic("mockDataTables.GetUsage called but not configured")
}

func (m *mockDataTables) UpdateUsage(context.Context, string, domain.UpdateUsageRequest) (*domain.DataTableUsage, error) {
	panic("mockDataTables.UpdateUsage called but not configured")
}

func (m *mockDataTables) DeleteUsage(context.Context, string) error {
	panic("mockDataTables.DeleteUsage called but not configured")
}

type mockAuth struct {
	LoginFn func(ctx context.Context, nickname, password string) (*domain.AuthToken, error)
}

func (m *mockAuth) Login(ctx context.Context, nickname, password string) (*domain.AuthToken, error) {
	if m.LoginFn == nil {
		panic("mockAuth.Login called but not configured")
	}
	return m.LoginFn(ctx, nickname, password)
}

// staticValidator accepts exactly one token.
type staticValidator struct {
	token  string
	claims middleware.JWTClaims
}

func (v staticValidator) Validate(_ context.Context, token string) (*middleware.JWTClaims, error) {
	if token != v.token {
		return nil, errors.New("unknown token")
	}
	c := v.claims
	return &c, nil
}

type stubHealth struct{ err error }

func (s stubHealth) Ping(context.Context) error { return s.err }
