// Package s3 archives validation reports as JSON objects in an
// S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sheetcurator/internal/archive"
	"sheetcurator/pkg/domain"
)

// Compile-time contract assertion.
var _ archive.Archiver = (*Store)(nil)

const contentType = "application/json"

// objectPutter is the slice of the S3 client the store uses; it allows a
// mock client in tests.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds explicit construction parameters (mostly for tests). For
// prod we rely primarily on environment variables.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; if set enables custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	SessionToken    string // optional
	PathStyle       bool
}

// Environment variables:
//   SHEETCURATOR_ARCHIVE_S3_BUCKET=<bucket> (required)
//   SHEETCURATOR_ARCHIVE_S3_REGION=<region> (default us-east-1)
//   SHEETCURATOR_ARCHIVE_S3_ENDPOINT=<url> (optional, for MinIO)
//   SHEETCURATOR_ARCHIVE_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// Store archives reports in a single bucket. Keys map to object keys
// directly.
type Store struct {
	client objectPutter
	bucket string
}

// New creates an S3 archive from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// OpenFromEnv constructs an S3 archive from process environment.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("SHEETCURATOR_ARCHIVE_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("SHEETCURATOR_ARCHIVE_S3_BUCKET required for s3 archive")
	}
	cfg := Config{
		Bucket:    bucket,
		Region:    os.Getenv("SHEETCURATOR_ARCHIVE_S3_REGION"),
		Endpoint:  os.Getenv("SHEETCURATOR_ARCHIVE_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("SHEETCURATOR_ARCHIVE_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// Put uploads the result as a JSON object and returns its s3:// location.
func (s *Store) Put(ctx context.Context, key string, result domain.ValidationResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	ct := contentType
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(payload),
		ContentType: &ct,
	}); err != nil {
		return "", fmt.Errorf("put report: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
