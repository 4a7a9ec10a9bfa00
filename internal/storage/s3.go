package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	appconfig "artshowcase-backend/internal/config"
	"artshowcase-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const callTimeout = 30 * time.Second

// Internal adapter interface so tests can run without a real S3 endpoint.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Gateway uploads binaries to durable object storage and resolves their
// public addresses.
type Gateway struct {
	client    s3API
	bucket    string
	region    string
	publicURL string
}

// NewGateway creates a gateway from S3 configuration
func NewGateway(ctx context.Context, cfg appconfig.S3Config) (*Gateway, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Gateway{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload writes the payload under the given key and returns its public
// address. Transport failures and timeouts both report as a storage write
// failure.
func (g *Gateway) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrStorageWrite, err)
	}

	return g.PublicURL(key), nil
}

// Remove deletes a stored object by key
func (g *Gateway) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the stable address an object is served from
func (g *Gateway) PublicURL(key string) string {
	if g.publicURL != "" {
		return g.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", g.bucket, g.region, key)
}

// KeyFromURL recovers the object key from a public address previously
// produced by PublicURL. Returns "" for addresses this gateway did not mint.
func (g *Gateway) KeyFromURL(address string) string {
	if g.publicURL != "" {
		if strings.HasPrefix(address, g.publicURL+"/") {
			return strings.TrimPrefix(address, g.publicURL+"/")
		}
		return ""
	}

	u, err := url.Parse(address)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(u.Host, g.bucket+".") {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
