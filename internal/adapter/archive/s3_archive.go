package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hamudi896/LagerAppENV/internal/port"
)

var _ port.ReportArchive = (*S3Archive)(nil)

// S3Config configures an S3 or MinIO compatible archive.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool

	// Static credentials; empty means the default AWS credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
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
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
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
	return NewS3ArchiveWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3ArchiveWithClient(client *s3.Client, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

func (a *S3Archive) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if a.prefix != "" {
		clean = path.Join(a.prefix, clean)
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(clean),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, clean, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, clean), nil
}
