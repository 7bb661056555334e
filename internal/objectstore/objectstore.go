// Package objectstore downloads files from registered storages. A storage's
// storage_type selects the backend: plain HTTP (the default), S3, Azure Blob
// Storage or Google Cloud Storage.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lakehouse/internal/domain"
)

// Storage types.
const (
	TypeHTTP  = "http"
	TypeS3    = "s3"
	TypeAzure = "azure"
	TypeGCS   = "gcs"
)

// DefaultMaxObjectBytes bounds a single download.
const DefaultMaxObjectBytes int64 = 256 << 20

// Fetcher downloads one object by its path relative to the storage.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Options configures the fetchers built by a Factory.
type Options struct {
	HTTPClient     *http.Client
	HTTPTimeout    time.Duration
	MaxObjectBytes int64
}

// Factory builds a Fetcher for a storage profile.
type Factory struct {
	opts Options
}

// NewFactory creates a Factory.
func NewFactory(opts Options) *Factory {
	if opts.HTTPClient == nil {
		timeout := opts.HTTPTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}
	if opts.MaxObjectBytes <= 0 {
		opts.MaxObjectBytes = DefaultMaxObjectBytes
	}
	return &Factory{opts: opts}
}

// NormalizeType maps a storage_type and its aliases to one of the Type
// constants. An empty type is http.
func NormalizeType(storageType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(storageType)) {
	case "", TypeHTTP, "https":
		return TypeHTTP, nil
	case TypeS3:
		return TypeS3, nil
	case TypeAzure, "azblob":
		return TypeAzure, nil
	case TypeGCS, "gs":
		return TypeGCS, nil
	default:
		return "", domain.ErrValidation("unsupported storage type: %s", storageType)
	}
}

// ForStorage returns the fetcher matching st.StorageType.
func (f *Factory) ForStorage(ctx context.Context, st domain.Storage) (Fetcher, error) {
	typ, err := NormalizeType(st.StorageType)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeS3:
		return NewS3Fetcher(st, f.opts.MaxObjectBytes)
	case TypeAzure:
		return NewAzureFetcher(st, f.opts.MaxObjectBytes)
	case TypeGCS:
		return NewGCSFetcher(ctx, st, f.opts.MaxObjectBytes)
	default:
		return NewHTTPFetcher(f.opts.HTTPClient, st, f.opts.MaxObjectBytes)
	}
}

// authString reads an optional string from an auth config.
func authString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}

// readAll reads at most limit bytes from r and fails when the object is larger.
func readAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("object exceeds %d bytes", limit)
	}
	return data, nil
}
