package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lakehouse/internal/domain"
	"lakehouse/internal/objectstore"
)

// StorageService provides tenant-scoped CRUD over storage profiles.
//
//nolint:revive // StorageService reads better than Service at call sites.
type StorageService struct {
	repo   domain.StorageRepository
	logger *slog.Logger
}

// NewStorageService creates a StorageService.
func NewStorageService(repo domain.StorageRepository, logger *slog.Logger) *StorageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageService{repo: repo, logger: logger.With("component", "storage")}
}

// List returns the storages of a tenant.
func (s *StorageService) List(ctx context.Context, tenantID string) ([]domain.Storage, error) {
	if tenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// Create validates and registers a storage.
func (s *StorageService) Create(ctx context.Context, req domain.CreateStorageRequest) (*domain.Storage, error) {
	if req.TenantID == "" {
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	if err := domain.RequireTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	st := &domain.Storage{
		Name:             strings.TrimSpace(req.Name),
		StorageType:      req.StorageType,
		UploadEndpoint:   strings.TrimSpace(req.UploadEndpoint),
		DownloadEndpoint: strings.TrimSpace(req.DownloadEndpoint),
		AuthConfig:       req.AuthConfig,
		TenantID:         req.TenantID,
	}
	if err := validateStorage(st); err != nil {
		return nil, err
	}

	out, err := s.repo.Create(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	s.logger.Info("storage registered", "id", out.ID, "tenant_id", out.TenantID, "storage_type", out.StorageType)
	return out, nil
}

// Get returns a storage.
func (s *StorageService) Get(ctx context.Context, id string) (*domain.Storage, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireTenant(ctx, st.TenantID); err != nil {
		return nil, err
	}
	return st, nil
}

// Update applies the set fields of req.
func (s *StorageService) Update(ctx context.Context, id string, req domain.UpdateStorageRequest) (*domain.Storage, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if req.StorageType != nil {
		st.StorageType = *req.StorageType
	}
	if req.UploadEndpoint != nil {
		st.UploadEndpoint = strings.TrimSpace(*req.UploadEndpoint)
	}
	if req.DownloadEndpoint != nil {
		st.DownloadEndpoint = strings.TrimSpace(*req.DownloadEndpoint)
	}
	if req.AuthConfig != nil {
		st.AuthConfig = req.AuthConfig
	}
	if err := validateStorage(st); err != nil {
		return nil, err
	}

	out, err := s.repo.Update(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("update storage: %w", err)
	}
	return out, nil
}

// Delete removes a storage.
func (s *StorageService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	s.logger.Info("storage deleted", "id", id)
	return nil
}

func validateStorage(st *domain.Storage) error {
	switch {
	case st.Name == "":
		return domain.ErrValidation("Name cannot be empty")
	case st.UploadEndpoint == "":
		return domain.ErrValidation("Upload endpoint cannot be empty")
	}
	typ, err := objectstore.NormalizeType(st.StorageType)
	if err != nil {
		return err
	}
	// cloud backends derive their endpoint from the auth config
	if typ == objectstore.TypeHTTP && st.DownloadEndpoint == "" {
		return domain.ErrValidation("Download endpoint cannot be empty")
	}
	st.StorageType = typ
	return nil
}
