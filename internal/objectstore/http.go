package objectstore

import (
	"context"
	"net/http"
	"strings"

	"lakehouse/internal/domain"
)

// HTTPFetcher downloads {download_endpoint}/{path} with a plain GET. When the
// storage's auth config carries both access_key and secret_key, the access
// key is sent as a bearer token.
type HTTPFetcher struct {
	client   *http.Client
	endpoint string
	bearer   string
	maxBytes int64
}

// NewHTTPFetcher creates an HTTPFetcher for st.
func NewHTTPFetcher(client *http.Client, st domain.Storage, maxBytes int64) (*HTTPFetcher, error) {
	if st.DownloadEndpoint == "" {
		return nil, domain.ErrValidation("storage %s has no download endpoint", st.Name)
	}
	f := &HTTPFetcher{
		client:   client,
		endpoint: strings.TrimRight(st.DownloadEndpoint, "/"),
		maxBytes: maxBytes,
	}
	access := authString(st.AuthConfig, "access_key")
	if access != "" && authString(st.AuthConfig, "secret_key") != "" {
		f.bearer = access
	}
	return f, nil
}

// URL returns the download URL of path.
func (f *HTTPFetcher) URL(path string) string {
	return f.endpoint + "/" + strings.TrimLeft(path, "/")
}

// Fetch implements Fetcher. Non-2xx responses are *domain.ExecutionError.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(path), nil)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to download file")
	}
	if f.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+f.bearer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to download file")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrExecution(nil, "Download failed with status: %s", resp.Status)
	}
	data, err := readAll(resp.Body, f.maxBytes)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to read file bytes")
	}
	return data, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
