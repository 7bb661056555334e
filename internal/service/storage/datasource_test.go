package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
)

func pgConfig() map[string]any {
	return map[string]any{"host": "db", "database": "wh", "username": "app", "password": "pw"}
}

func TestDataSourceService_Create(t *testing.T) {
	t.Run("happy_path", func(t *testing.T) {
		repo := &mockDataSourceRepo{
			CreateFn: func(_ context.Context, ds *domain.DataSource) (*domain.DataSource, error) {
				out := *ds
				out.ID = "ds-1"
				return &out, nil
			},
		}
		svc := NewDataSourceService(repo, nil)

		got, err := svc.Create(ctxWithTenant("t1"), domain.CreateDataSourceRequest{
			Name: " warehouse ", DBType: "postgres", ConnectionConfig: pgConfig(), TenantID: "t1",
		})
		require.NoError(t, err)
		assert.Equal(t, "ds-1", got.ID)
		assert.Equal(t, "warehouse", got.Name)
	})

	tests := []struct {
		name string
		req  domain.CreateDataSourceRequest
		msg  string
	}{
		{"missing tenant", domain.CreateDataSourceRequest{Name: "wh", DBType: "postgres", ConnectionConfig: pgConfig()}, "Tenant ID is required"},
		{"empty name", domain.CreateDataSourceRequest{DBType: "postgres", ConnectionConfig: pgConfig(), TenantID: "t1"}, "Name cannot be empty"},
		{"bad type", domain.CreateDataSourceRequest{Name: "wh", DBType: "oracle", ConnectionConfig: pgConfig(), TenantID: "t1"}, "Unsupported database type: oracle"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewDataSourceService(&mockDataSourceRepo{}, nil)
			_, err := svc.Create(context.Background(), tc.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}

	t.Run("incomplete connection config", func(t *testing.T) {
		svc := NewDataSourceService(&mockDataSourceRepo{}, nil)
		_, err := svc.Create(context.Background(), domain.CreateDataSourceRequest{
			Name: "wh", DBType: "mysql", ConnectionConfig: map[string]any{"host": "db"}, TenantID: "t1",
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("other tenant", func(t *testing.T) {
		svc := NewDataSourceService(&mockDataSourceRepo{}, nil)
		_, err := svc.Create(ctxWithTenant("t2"), domain.CreateDataSourceRequest{
			Name: "wh", DBType: "postgres", ConnectionConfig: pgConfig(), TenantID: "t1",
		})
		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})

	t.Run("repo_error", func(t *testing.T) {
		repo := &mockDataSourceRepo{
			CreateFn: func(context.Context, *domain.DataSource) (*domain.DataSource, error) { return nil, errTest },
		}
		svc := NewDataSourceService(repo, nil)
		_, err := svc.Create(context.Background(), domain.CreateDataSourceRequest{
			Name: "wh", DBType: "postgres", ConnectionConfig: pgConfig(), TenantID: "t1",
		})
		require.ErrorIs(t, err, errTest)
	})
}

func TestDataSourceService_Update(t *testing.T) {
	existing := func(context.Context, string) (*domain.DataSource, error) {
		return &domain.DataSource{ID: "ds-1", Name: "wh", DBType: "postgres", ConnectionConfig: pgConfig(), TenantID: "t1"}, nil
	}

	t.Run("switch to duckdb", func(t *testing.T) {
		var saved *domain.DataSource
		repo := &mockDataSourceRepo{
			GetByIDFn: existing,
			UpdateFn: func(_ context.Context, ds *domain.DataSource) (*domain.DataSource, error) {
				saved = ds
				return ds, nil
			},
		}
		svc := NewDataSourceService(repo, nil)
		dbType := "duckdb"
		_, err := svc.Update(ctxWithTenant("t1"), "ds-1", domain.UpdateDataSourceRequest{
			DBType: &dbType, ConnectionConfig: map[string]any{"database": "lake.duckdb"},
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "duckdb", saved.DBType)
		assert.Equal(t, "wh", saved.Name)
	})

	t.Run("type change without matching config", func(t *testing.T) {
		svc := NewDataSourceService(&mockDataSourceRepo{GetByIDFn: existing}, nil)
		dbType := "sqlserver"
		_, err := svc.Update(ctxWithTenant("t1"), "ds-1", domain.UpdateDataSourceRequest{
			DBType: &dbType, ConnectionConfig: map[string]any{"host": "db"},
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("other tenant", func(t *testing.T) {
		svc := NewDataSourceService(&mockDataSourceRepo{GetByIDFn: existing}, nil)
		_, err := svc.Update(ctxWithTenant("t9"), "ds-1", domain.UpdateDataSourceRequest{})
		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})
}

func TestDataSourceService_Delete(t *testing.T) {
	deleted := ""
	repo := &mockDataSourceRepo{
		GetByIDFn: func(_ context.Context, id string) (*domain.DataSource, error) {
			if id != "ds-1" {
				return nil, domain.ErrNotFound("data source %s not found", id)
			}
			return &domain.DataSource{ID: id, TenantID: "t1"}, nil
		},
		DeleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewDataSourceService(repo, nil)

	require.NoError(t, svc.Delete(ctxWithTenant("t1"), "ds-1"))
	assert.Equal(t, "ds-1", deleted)

	err := svc.Delete(ctxWithTenant("t1"), "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}
