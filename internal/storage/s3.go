package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/campus-hub/campus-services/internal/appconfig"
	"github.com/rs/zerolog/log"
)

// s3Store implements ObjectStore against an S3-compatible backend.
type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store creates the object store from the S3 configuration. A custom
// endpoint enables S3-compatible services such as MinIO.
func NewS3Store(cfg appconfig.S3Config) (ObjectStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing is required by most S3-compatible services
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}

	log.Info().Str("bucket", cfg.Bucket).Str("base_url", baseURL).Msg("object store initialized")

	return &s3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores the payload under key and returns its durable URL.
func (s *s3Store) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading object %q: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Delete removes the blob the URL points at. URLs outside this store are
// rejected rather than forwarded to S3.
func (s *s3Store) Delete(ctx context.Context, url string) error {
	if !s.Owns(url) {
		return fmt.Errorf("url %q is not owned by this store", url)
	}

	key := strings.TrimPrefix(strings.TrimPrefix(url, s.baseURL), "/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error deleting object %q: %w", key, err)
	}

	return nil
}

// Owns reports whether the URL points into this store's bucket.
func (s *s3Store) Owns(url string) bool {
	return strings.HasPrefix(url, s.baseURL+"/")
}
