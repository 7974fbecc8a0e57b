// Package s3 implements the secret store on S3-compatible object storage.
//
// Bootstrap secrets and API key sets live as objects under deterministic keys
// (see internal/util/naming). Boot-time tooling on each instance writes its
// bootstrap secret here; the pool reads it once at assignment time.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrSecretNotFound reports that no secret exists under the requested key.
// The pool layer converts it into an assignment-fatal SecretMissingError.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore reads and deletes opaque secret blobs by deterministic name.
type SecretStore struct {
	s3     *s3.Client
	bucket string
}

// NewSecretStore creates a secret store against an S3-compatible endpoint.
func NewSecretStore(endpoint, region, bucket, accessKey, secretKey string) (*SecretStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = false
	})

	return &SecretStore{s3: client, bucket: bucket}, nil
}

// GetSecret returns the blob stored under key, or ErrSecretNotFound.
func (s *SecretStore) GetSecret(ctx context.Context, key string) ([]byte, error) {
	result, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, key)
		}
		return nil, fmt.Errorf("failed to get secret %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read secret %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// PutSecret stores a blob under key. Used by boot-tooling parity in tests and
// by operators seeding platform or tenant key sets.
func (s *SecretStore) PutSecret(ctx context.Context, key string, blob []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(blob),
		ContentLength: aws.Int64(int64(len(blob))),
	})
	if err != nil {
		return fmt.Errorf("failed to put secret %s: %w", key, err)
	}
	return nil
}

// DeleteSecret removes the blob under key. Deleting an absent key succeeds.
func (s *SecretStore) DeleteSecret(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to delete secret %s: %w", key, err)
	}
	return nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	// Check for typed S3 errors first
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	// that may not return the exact SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "NoSuchBucket" || code == "404"
	}

	return false
}
