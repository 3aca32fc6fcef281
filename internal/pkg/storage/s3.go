package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/internal/pkg/env"
)

// S3Config holds S3 storage configuration
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
}

// LoadS3Config loads S3 configuration from environment variables
func LoadS3Config() (*S3Config, error) {
	cfg := &S3Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "ap-northeast-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
	}

	if cfg.AccessKeyID == "" {
		return nil, errors.New("S3_ACCESS_KEY_ID is required when STORAGE_DRIVER=s3")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("S3_SECRET_ACCESS_KEY is required when STORAGE_DRIVER=s3")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("S3_BUCKET_NAME is required when STORAGE_DRIVER=s3")
	}
	return cfg, nil
}

// S3 stores blobs in an S3 bucket (or an S3-compatible service via
// S3_ENDPOINT_URL).
type S3 struct {
	client *s3.Client
	config *S3Config
}

// NewS3 creates an S3-backed blob store and verifies bucket access.
func NewS3(cfg *S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	store := &S3{client: client, config: cfg}

	_, err = client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(cfg.BucketName),
	})
	if err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", cfg.BucketName, err)
	}

	log.Infof("[Storage] Using S3 bucket %s", cfg.BucketName)
	return store, nil
}

// Put uploads the blob and returns its key and public URL.
func (s *S3) Put(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &UploadResult{Key: key, URL: s.objectURL(key)}, nil
}

// Delete removes the object from the bucket.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) objectURL(key string) string {
	if s.config.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.EndpointURL, "/"), s.config.BucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.BucketName, s.config.Region, key)
}
