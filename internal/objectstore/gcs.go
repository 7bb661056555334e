package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"lakehouse/internal/domain"
)

// GCSFetcher reads objects from one Google Cloud Storage bucket.
type GCSFetcher struct {
	client   *storage.Client
	bucket   string
	maxBytes int64
}

// NewGCSFetcher creates a GCSFetcher from the auth config keys bucket and
// credentials_json, a service account key given as a JSON string or object.
// The server's own credentials are never used. download_endpoint overrides
// the API endpoint.
func NewGCSFetcher(ctx context.Context, st domain.Storage, maxBytes int64) (*GCSFetcher, error) {
	bucket := authString(st.AuthConfig, "bucket")
	if bucket == "" {
		return nil, domain.ErrValidation("storage %s: gcs bucket is required", st.Name)
	}
	creds, err := gcsCredentials(st)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithAuthCredentialsJSON(option.ServiceAccount, creds)}
	if ep := strings.TrimRight(st.DownloadEndpoint, "/"); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSFetcher{client: client, bucket: bucket, maxBytes: maxBytes}, nil
}

func gcsCredentials(st domain.Storage) ([]byte, error) {
	if _, ok := st.AuthConfig["credentials_file"]; ok {
		return nil, domain.ErrValidation("storage %s: credentials_file is not supported, use credentials_json", st.Name)
	}
	switch v := st.AuthConfig["credentials_json"].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return []byte(v), nil
		}
	case map[string]any:
		if len(v) > 0 {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, domain.ErrValidation("storage %s: invalid credentials_json", st.Name)
			}
			return b, nil
		}
	}
	return nil, domain.ErrValidation("storage %s: gcs credentials_json is required", st.Name)
}

// Fetch implements Fetcher.
func (f *GCSFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	r, err := f.client.Bucket(f.bucket).Object(strings.TrimLeft(path, "/")).NewReader(ctx)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to download file")
	}
	defer r.Close() //nolint:errcheck

	data, err := readAll(r, f.maxBytes)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to read file bytes")
	}
	return data, nil
}

// Close releases the underlying client.
func (f *GCSFetcher) Close() error { return f.client.Close() }

var _ Fetcher = (*GCSFetcher)(nil)
