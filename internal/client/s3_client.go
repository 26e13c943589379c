package client

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is a client for interacting with an S3-compatible object store.
type S3Client struct {
	s3Client  *s3.Client
	publicURL string
}

// NewS3Client creates a new S3Client. publicURL is the base under which
// uploaded objects are reachable, e.g. a CDN or bucket website endpoint.
func NewS3Client(ctx context.Context, publicURL string) (*S3Client, error) {
	// Load the AWS configuration from environment variables, shared config files, etc.
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &S3Client{
		s3Client:  s3.NewFromConfig(cfg),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// UploadFile uploads a file to S3.
func (c *S3Client) UploadFile(ctx context.Context, bucket, key string, data io.Reader) error {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

// DeleteFile removes an object from S3.
func (c *S3Client) DeleteFile(ctx context.Context, bucket, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// ObjectURL returns the public URL for a stored object.
func (c *S3Client) ObjectURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicURL, bucket, key)
}

// ObjectKeyFromURL reverses ObjectURL, returning the key of an object stored
// in the given bucket, or an empty string if the URL points elsewhere.
func (c *S3Client) ObjectKeyFromURL(bucket, url string) string {
	prefix := fmt.Sprintf("%s/%s/", c.publicURL, bucket)
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
