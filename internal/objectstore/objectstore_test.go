package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if r.URL.Path == "/files/missing.xlsx" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("workbook-bytes"))
	}))
	t.Cleanup(srv.Close)

	f := NewFactory(Options{})
	fetcher, err := f.ForStorage(context.Background(), domain.Storage{
		Name:             "files",
		DownloadEndpoint: srv.URL + "/files/",
		AuthConfig:       map[string]any{"access_key": "AK", "secret_key": "SK"},
	})
	require.NoError(t, err)

	data, err := fetcher.Fetch(context.Background(), "report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "workbook-bytes", string(data))
	assert.Equal(t, "Bearer AK", gotAuth)
	assert.Equal(t, "/files/report.xlsx", gotPath)

	_, err = fetcher.Fetch(context.Background(), "missing.xlsx")
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, err.Error(), "Download failed with status: 404")
}

func TestHTTPFetcher_NoBearerWithoutSecret(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	t.Cleanup(srv.Close)

	fetcher, err := NewHTTPFetcher(srv.Client(), domain.Storage{
		DownloadEndpoint: srv.URL,
		AuthConfig:       map[string]any{"access_key": "AK"},
	}, 1024)
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "/a.xlsx")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestHTTPFetcher_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	t.Cleanup(srv.Close)

	fetcher, err := NewHTTPFetcher(srv.Client(), domain.Storage{DownloadEndpoint: srv.URL}, 16)
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), "big")
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
}

func TestHTTPFetcher_RequiresEndpoint(t *testing.T) {
	_, err := NewHTTPFetcher(http.DefaultClient, domain.Storage{Name: "x"}, 1)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

type fakeS3 struct {
	objects map[string]string
	input   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Fetcher(t *testing.T) {
	st := domain.Storage{
		Name:             "lake",
		StorageType:      TypeS3,
		DownloadEndpoint: "fsn1.your-objectstorage.com",
		AuthConfig: map[string]any{
			"access_key": "AK", "secret_key": "SK", "bucket": "imports",
		},
	}
	fetcher, err := NewS3Fetcher(st, 1024)
	require.NoError(t, err)
	assert.Equal(t, "imports", fetcher.bucket)

	fake := &fakeS3{objects: map[string]string{"in/a.xlsx": "data"}}
	fetcher.client = fake

	data, err := fetcher.Fetch(context.Background(), "/in/a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, "imports", *fake.input.Bucket)

	_, err = fetcher.Fetch(context.Background(), "missing")
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
}

func TestFactory_Validation(t *testing.T) {
	f := NewFactory(Options{})
	tests := []struct {
		name string
		st   domain.Storage
	}{
		{"unsupported type", domain.Storage{StorageType: "ftp", DownloadEndpoint: "x"}},
		{"s3 without bucket", domain.Storage{StorageType: TypeS3, AuthConfig: map[string]any{"access_key": "a", "secret_key": "b"}}},
		{"s3 without keys", domain.Storage{StorageType: TypeS3, AuthConfig: map[string]any{"bucket": "b"}}},
		{"azure without key", domain.Storage{StorageType: TypeAzure, AuthConfig: map[string]any{"account_name": "a", "container": "c"}}},
		{"gcs without bucket", domain.Storage{StorageType: TypeGCS}},
		{"gcs without credentials", domain.Storage{StorageType: TypeGCS, AuthConfig: map[string]any{"bucket": "b"}}},
		{"gcs with blank credentials", domain.Storage{StorageType: TypeGCS, AuthConfig: map[string]any{"bucket": "b", "credentials_json": "  "}}},
		{"gcs with host credentials file", domain.Storage{StorageType: TypeGCS, AuthConfig: map[string]any{
			"bucket": "b", "credentials_file": "/etc/passwd", "credentials_json": `{"type":"service_account"}`,
		}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ForStorage(context.Background(), tc.st)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestGCSCredentials(t *testing.T) {
	raw, err := gcsCredentials(domain.Storage{AuthConfig: map[string]any{
		"credentials_json": `{"type":"service_account","project_id":"p"}`,
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account","project_id":"p"}`, string(raw))

	obj, err := gcsCredentials(domain.Storage{AuthConfig: map[string]any{
		"credentials_json": map[string]any{"type": "service_account", "project_id": "p"},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account","project_id":"p"}`, string(obj))
}

func TestFactory_Azure(t *testing.T) {
	fetcher, err := NewFactory(Options{}).ForStorage(context.Background(), domain.Storage{
		StorageType: TypeAzure,
		AuthConfig: map[string]any{
			"account_name": "acct",
			"account_key":  "c2VjcmV0LWtleQ==",
			"container":    "imports",
		},
	})
	require.NoError(t, err)
	assert.IsType(t, &AzureFetcher{}, fetcher)
}
