package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/dmitrijs2005/accountkeeper/internal/config"
)

// Test seams over the AWS SDK.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Mirror uploads snapshots to an S3-compatible bucket under Prefix.
type S3Mirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Mirror builds a client from mc. Static credentials are used when an
// access key is configured, otherwise the default AWS credential chain.
// A non-empty Endpoint targets S3-compatible servers such as MinIO.
func NewS3Mirror(ctx context.Context, mc appconfig.Mirror) (*S3Mirror, error) {
	if mc.Bucket == "" {
		return nil, errors.New("s3 mirror: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if mc.Region != "" {
		opts = append(opts, config.WithRegion(mc.Region))
	}
	if mc.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(mc.AccessKey, mc.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 mirror: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if mc.Endpoint != "" {
			o.BaseEndpoint = aws.String(mc.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Mirror{client: client, bucket: mc.Bucket, prefix: mc.Prefix}, nil
}

// Key is the object key a snapshot named name is stored under.
func (m *S3Mirror) Key(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

func (m *S3Mirror) Upload(ctx context.Context, name string, data []byte) error {
	_, err := putObject(m.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.Key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 mirror: put %s: %w", m.Key(name), err)
	}
	return nil
}
