// Package receipts stores uploaded receipt images in S3-compatible object storage.
package receipts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"fjacquet/eod-recon/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config describes the target bucket.
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	PublicURL string
	AccessKey string
	SecretKey string
}

// PutObjectAPI is the subset of the S3 client used by Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes receipt files to a bucket and returns their URL.
type Uploader struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
	logger    logging.Logger
}

// NewS3Uploader builds an S3 client from cfg. Static credentials are used
// when an access key is set, otherwise the default AWS chain applies.
func NewS3Uploader(ctx context.Context, cfg Config, logger logging.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("receipts bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure object storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewUploader(client, cfg.Bucket, cfg.PublicURL, logger), nil
}

// NewUploader wraps an existing client.
func NewUploader(client PutObjectAPI, bucket, publicURL string, logger logging.Logger) *Uploader {
	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logging.Component(logger, "receipts"),
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds a collision-free key under the report's prefix.
func ObjectKey(reportID, filename string) string {
	name := unsafeChars.ReplaceAllString(path.Base(strings.ReplaceAll(filename, `\`, "/")), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%s-%s", reportID, uuid.NewString(), name)
}

// Upload stores body under key and returns the object's URL.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("receipt %s is empty", key)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload receipt %s: %w", key, err)
	}

	u.logger.Info("Uploaded receipt",
		logging.F("key", key),
		logging.F("bytes", len(data)))
	return u.URL(key), nil
}

// URL returns the address of key: under PublicURL when configured, as an
// s3:// URI otherwise.
func (u *Uploader) URL(key string) string {
	if u.publicURL != "" {
		return u.publicURL + "/" + key
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key)
}
