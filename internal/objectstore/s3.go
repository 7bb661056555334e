package objectstore

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lakehouse/internal/domain"
)

// s3API is the subset of *s3.Client used by S3Fetcher.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads objects from an S3-compatible bucket. download_endpoint,
// when set, is the S3 endpoint and forces path-style addressing.
type S3Fetcher struct {
	client   s3API
	bucket   string
	maxBytes int64
}

// NewS3Fetcher creates an S3Fetcher from the auth config keys access_key,
// secret_key, region and bucket.
func NewS3Fetcher(st domain.Storage, maxBytes int64) (*S3Fetcher, error) {
	bucket := authString(st.AuthConfig, "bucket")
	if bucket == "" {
		return nil, domain.ErrValidation("storage %s: s3 bucket is required", st.Name)
	}
	keyID := authString(st.AuthConfig, "access_key")
	secret := authString(st.AuthConfig, "secret_key")
	if keyID == "" || secret == "" {
		return nil, domain.ErrValidation("storage %s: s3 access_key and secret_key are required", st.Name)
	}
	region := authString(st.AuthConfig, "region")
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(keyID, secret, ""),
	}
	if ep := strings.TrimRight(st.DownloadEndpoint, "/"); ep != "" {
		if !strings.Contains(ep, "://") {
			ep = "https://" + ep
		}
		opts.BaseEndpoint = aws.String(ep)
		opts.UsePathStyle = true
	}
	return &S3Fetcher{client: s3.New(opts), bucket: bucket, maxBytes: maxBytes}, nil
}

// Fetch implements Fetcher.
func (f *S3Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(strings.TrimLeft(path, "/")),
	})
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to download file")
	}
	defer out.Body.Close() //nolint:errcheck

	data, err := readAll(out.Body, f.maxBytes)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to read file bytes")
	}
	return data, nil
}

var _ Fetcher = (*S3Fetcher)(nil)
