package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"rowlly_listings/catalog"
)

// S3Config holds configuration for S3-compatible storage
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // Optional: for DO Spaces, R2, MinIO
	AccessKeyID     string
	SecretAccessKey string
}

// S3CatalogSource reads the catalog YAML document from an object store.
type S3CatalogSource struct {
	client *s3.Client
	bucket string
	key    string
}

func NewS3CatalogSource(ctx context.Context, cfg S3Config) (*S3CatalogSource, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3CatalogSource{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
	}, nil
}

// Load implements catalog.Source.
func (s *S3CatalogSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	return catalog.Decode(out.Body)
}

// Publish uploads c so that every instance reading this object picks it up on
// its next reload.
func (s *S3CatalogSource) Publish(ctx context.Context, c *catalog.Catalog) error {
	var buf bytes.Buffer
	if err := catalog.Encode(&buf, c); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/yaml"),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}
