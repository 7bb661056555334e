package domain

import "time"

// DataSource is an externally registered database connection profile owned by a tenant.
type DataSource struct {
	ID               string
	Name             string
	DBType           string
	ConnectionConfig map[string]any // host, port, database, username, password
	TenantID         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateDataSourceRequest holds parameters for registering a data source.
type CreateDataSourceRequest struct {
	Name             string
	DBType           string
	ConnectionConfig map[string]any
	TenantID         string
}

// UpdateDataSourceRequest holds the fields that may change on a data source.
type UpdateDataSourceRequest struct {
	Name             *string
	DBType           *string
	ConnectionConfig map[string]any
}

// Storage is an externally registered object-storage endpoint owned by a tenant.
type Storage struct {
	ID               string
	Name             string
	StorageType      string
	UploadEndpoint   string
	DownloadEndpoint string
	AuthConfig       map[string]any // access_key, secret_key and provider specific keys
	TenantID         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateStorageRequest holds parameters for registering a storage.
type CreateStorageRequest struct {
	Name             string
	StorageType      string
	UploadEndpoint   string
	DownloadEndpoint string
	AuthConfig       map[string]any
	TenantID         string
}

// UpdateStorageRequest holds the fields that may change on a storage.
type UpdateStorageRequest struct {
	Name             *string
	StorageType      *string
	UploadEndpoint   *string
	DownloadEndpoint *string
	AuthConfig       map[string]any
}
