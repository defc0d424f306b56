package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// S3Library exports images to an S3-compatible bucket (SeaweedFS, MinIO, AWS).
type S3Library struct {
	client *s3.Client
	bucket string
	logger *log.Logger
}

// NewS3Library creates a client for cfg and makes sure the bucket exists.
func NewS3Library(ctx context.Context, cfg shared.S3Config, logger *log.Logger) (*S3Library, error) {
	if logger == nil {
		logger = shared.NewQuietLogger()
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	accessKey, secretKey := cfg.AccessKey, cfg.SecretKey
	if accessKey == "" {
		accessKey, secretKey = "any", "any"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	lib := &S3Library{client: client, bucket: cfg.Bucket, logger: logger}
	if err := lib.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *S3Library) Name() string { return shared.LibraryS3 }

// Bucket returns the target bucket.
func (l *S3Library) Bucket() string { return l.bucket }

// Export uploads blob under name, adding a numeric suffix when the key is already taken.
func (l *S3Library) Export(ctx context.Context, name string, blob models.Blob) error {
	key, err := l.freeKey(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = l.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(l.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload %s: %w", shared.ErrExportFailed, key, err)
	}

	l.logger.Debug("exported image", "bucket", l.bucket, "key", key)
	return nil
}

func (l *S3Library) freeKey(ctx context.Context, name string) (string, error) {
	stem, ext := splitName(name)
	for i := 0; i < maxCollisionSuffix; i++ {
		key := name
		if i > 0 {
			key = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}

		_, err := l.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			continue
		}

		if isMissing(err) {
			return key, nil
		}
		return "", fmt.Errorf("failed to check %s: %w", key, err)
	}
	return "", fmt.Errorf("no free key for %s", name)
}

func isMissing(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

// ensureBucket checks if the bucket exists, creating it if necessary
func (l *S3Library) ensureBucket(ctx context.Context) error {
	_, err := l.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(l.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = l.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(l.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", l.bucket, err)
	}
	l.logger.Info("created bucket", "bucket", l.bucket)
	return nil
}
