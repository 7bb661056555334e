package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
)

func TestStorageService_Create(t *testing.T) {
	echo := &mockStorageRepo{
		CreateFn: func(_ context.Context, st *domain.Storage) (*domain.Storage, error) {
			out := *st
			out.ID = "st-1"
			return &out, nil
		},
	}

	t.Run("defaults to http", func(t *testing.T) {
		svc := NewStorageService(echo, nil)
		got, err := svc.Create(context.Background(), domain.CreateStorageRequest{
			Name: "files", UploadEndpoint: "https://up", DownloadEndpoint: "https://down", TenantID: "t1",
		})
		require.NoError(t, err)
		assert.Equal(t, "http", got.StorageType)
	})

	t.Run("s3 without download endpoint", func(t *testing.T) {
		svc := NewStorageService(echo, nil)
		got, err := svc.Create(context.Background(), domain.CreateStorageRequest{
			Name: "lake", StorageType: "S3", UploadEndpoint: "s3://lake", TenantID: "t1",
			AuthConfig: map[string]any{"bucket": "lake", "access_key": "a", "secret_key": "s"},
		})
		require.NoError(t, err)
		assert.Equal(t, "s3", got.StorageType)
	})

	tests := []struct {
		name string
		req  domain.CreateStorageRequest
		msg  string
	}{
		{"empty name", domain.CreateStorageRequest{UploadEndpoint: "u", DownloadEndpoint: "d", TenantID: "t1"}, "Name cannot be empty"},
		{"empty upload endpoint", domain.CreateStorageRequest{Name: "files", DownloadEndpoint: "d", TenantID: "t1"}, "Upload endpoint cannot be empty"},
		{"http without download endpoint", domain.CreateStorageRequest{Name: "files", UploadEndpoint: "u", TenantID: "t1"}, "Download endpoint cannot be empty"},
		{"unknown type", domain.CreateStorageRequest{Name: "files", StorageType: "ftp", UploadEndpoint: "u", TenantID: "t1"}, "unsupported storage type: ftp"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewStorageService(&mockStorageRepo{}, nil)
			_, err := svc.Create(context.Background(), tc.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}
}

func TestStorageService_UpdateAndDelete(t *testing.T) {
	current := domain.Storage{ID: "st-1", Name: "files", StorageType: "http", UploadEndpoint: "u", DownloadEndpoint: "d", TenantID: "t1"}
	repo := &mockStorageRepo{
		GetByIDFn: func(context.Context, string) (*domain.Storage, error) {
			st := current
			return &st, nil
		},
		UpdateFn: func(_ context.Context, st *domain.Storage) (*domain.Storage, error) { return st, nil },
		DeleteFn: func(context.Context, string) error { return nil },
	}
	svc := NewStorageService(repo, nil)

	empty := " "
	_, err := svc.Update(ctxWithTenant("t1"), "st-1", domain.UpdateStorageRequest{UploadEndpoint: &empty})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	name := "archive"
	got, err := svc.Update(ctxWithTenant("t1"), "st-1", domain.UpdateStorageRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "archive", got.Name)

	err = svc.Delete(ctxWithTenant("t2"), "st-1")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
	require.NoError(t, svc.Delete(ctxWithTenant("t1"), "st-1"))
}
