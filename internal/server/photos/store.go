// Package photos uploads sale photos to S3-compatible object storage.
package photos

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/logging"
	"github.com/dmitrijs2005/ventas/internal/server/retryx"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	newKey = func() string { return uuid.NewString() }
)

// Settings configures the S3 connection.
type Settings struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicBaseURL prefixes object keys in returned URLs. When empty the
	// path-style URL under Endpoint is used.
	PublicBaseURL string
}

// Stored describes an uploaded photo.
type Stored struct {
	Key string
	URL string
}

type S3Store struct {
	client   *s3.Client
	settings Settings
	policy   retryx.Policy
	logger   logging.Logger
}

func NewS3Store(ctx context.Context, s Settings, policy retryx.Policy, logger logging.Logger) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKey,
			s.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		// MinIO serves buckets under the path
		o.UsePathStyle = true
	})

	return &S3Store{
		client:   client,
		settings: s,
		policy:   policy,
		logger:   logger.With("module", "photos"),
	}, nil
}

// PublicURL returns the URL a stored object is served from.
func (s *S3Store) PublicURL(key string) string {
	base := s.settings.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(s.settings.Endpoint, "/") + "/" + s.settings.Bucket
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// Upload stores data under a fresh "<uuid>.<ext>" key. Failures are
// reported as common.ErrStorage.
func (s *S3Store) Upload(ctx context.Context, filename, contentType string, data []byte) (Stored, error) {
	key := newKey() + Extension(filename, contentType)
	bucket := s.settings.Bucket

	err := retryx.Do(ctx, s.policy, func(ctx context.Context) error {
		return putObject(s.client, ctx, &s3.PutObjectInput{
			Bucket:        &bucket,
			Key:           &key,
			Body:          bytes.NewReader(data),
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(int64(len(data))),
		})
	})
	if err != nil {
		s.logger.Error(ctx, "photo upload failed", "key", key, "error", err)
		return Stored{}, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.logger.Debug(ctx, "photo uploaded", "key", key, "bytes", len(data))
	return Stored{Key: key, URL: s.PublicURL(key)}, nil
}
