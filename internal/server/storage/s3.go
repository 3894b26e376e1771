// Package storage hands out presigned object-storage URLs for event images.
// Clients upload and download directly; the server never proxies bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned by Disabled for every operation.
var ErrDisabled = errors.New("image storage is not configured")

// PresignExpiry bounds how long an upload or download URL stays usable.
const PresignExpiry = 15 * time.Minute

// ImageStore issues URLs for reading and writing stored objects.
type ImageStore interface {
	PresignUpload(ctx context.Context, key string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Config carries the S3-compatible endpoint settings.
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
}

// seams for tests
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
)

type S3Store struct {
	bucket  string
	presign *s3.PresignClient
}

// NewS3Store builds a presign client for cfg. Static credentials are used
// when an access key is given, otherwise the default AWS chain applies.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			// MinIO and other self-hosted endpoints expect path-style URLs
			o.UsePathStyle = true
		}
	})

	return &S3Store{bucket: cfg.Bucket, presign: newS3PresignClient(client)}, nil
}

func (s *S3Store) PresignUpload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

func (s *S3Store) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) PresignUpload(context.Context, string) (string, error)   { return "", ErrDisabled }
func (Disabled) PresignDownload(context.Context, string) (string, error) { return "", ErrDisabled }

// NewImageKey returns a fresh object key for an image of eventID with the
// given extension (including the dot).
func NewImageKey(eventID, ext string, now time.Time) string {
	return fmt.Sprintf("events/%d/%02d/%02d/%s/%s%s", now.Year(), now.Month(), now.Day(), eventID, uuid.NewString(), ext)
}
