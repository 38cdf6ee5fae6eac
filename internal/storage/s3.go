// Package storage signs time-limited download links for automation files
// kept in S3.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/agenthands/automationvault/internal/config"
)

type URLSigner interface {
	// SignGet returns a URL granting temporary read access to bucket/key.
	SignGet(ctx context.Context, bucket, key string) (string, error)
}

type S3Signer struct {
	presign *s3.PresignClient
	ttl     time.Duration
}

// NewS3Signer loads credentials from the default AWS chain.
func NewS3Signer(ctx context.Context, cfg config.StorageConfig) (*S3Signer, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3SignerFromConfig(awsCfg, cfg.PresignTTL()), nil
}

func NewS3SignerFromConfig(awsCfg aws.Config, ttl time.Duration) *S3Signer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Signer{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		ttl:     ttl,
	}
}

func (s *S3Signer) SignGet(ctx context.Context, bucket, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign s3://%s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// ParseS3URL splits s3://bucket/key. ok is false for any other scheme.
func ParseS3URL(raw string) (bucket, key string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}
