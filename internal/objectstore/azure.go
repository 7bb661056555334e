package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"lakehouse/internal/domain"
)

// AzureFetcher reads blobs from one container using shared-key auth.
type AzureFetcher struct {
	client    *azblob.Client
	container string
	maxBytes  int64
}

// NewAzureFetcher creates an AzureFetcher from the auth config keys
// account_name, account_key and container. download_endpoint overrides the
// default https://<account>.blob.core.windows.net service URL.
func NewAzureFetcher(st domain.Storage, maxBytes int64) (*AzureFetcher, error) {
	account := authString(st.AuthConfig, "account_name")
	key := authString(st.AuthConfig, "account_key")
	container := authString(st.AuthConfig, "container")
	if account == "" || key == "" || container == "" {
		return nil, domain.ErrValidation("storage %s: azure account_name, account_key and container are required", st.Name)
	}

	cred, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, domain.ErrValidation("storage %s: invalid azure credential: %v", st.Name, err)
	}
	serviceURL := strings.TrimRight(st.DownloadEndpoint, "/")
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", account)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureFetcher{client: client, container: container, maxBytes: maxBytes}, nil
}

// Fetch implements Fetcher.
func (f *AzureFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	resp, err := f.client.DownloadStream(ctx, f.container, strings.TrimLeft(path, "/"), nil)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to download file")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := readAll(resp.Body, f.maxBytes)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to read file bytes")
	}
	return data, nil
}

var _ Fetcher = (*AzureFetcher)(nil)
