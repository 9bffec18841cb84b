// Package objectstore issues short-lived presigned GET URLs for gated report
// files held in an S3-compatible (R2) bucket.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/meridian-advisory/insights-api/internal/domain"
)

// Signer issues presigned GET URLs.
type Signer interface {
	// SignGet returns a time-limited URL granting read access to key.
	SignGet(ctx context.Context, key string) (string, error)
}

// Config holds object-store connection settings.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	SignExpiry      time.Duration
}

// s3Signer presigns against an S3-compatible endpoint.
type s3Signer struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// New creates a signer for the configured bucket.
func New(ctx context.Context, cfg Config) (Signer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})

	return &s3Signer{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  cfg.SignExpiry,
	}, nil
}

func (s *s3Signer) SignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}

// disabledSigner is used when no object store is configured. Requests that
// need a signed URL fail with ErrSigningUnavailable.
type disabledSigner struct{}

// Disabled returns a signer whose SignGet always fails.
func Disabled() Signer {
	return disabledSigner{}
}

func (disabledSigner) SignGet(context.Context, string) (string, error) {
	return "", domain.ErrSigningUnavailable
}
