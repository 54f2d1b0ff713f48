package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// Client wraps the S3 client for the R2 PDF bucket
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// NewClient creates a new R2 storage client
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("R2 storage is disabled")
	}

	// Create AWS config
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client against the R2 endpoint
	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.EndpointURL)
		o.UsePathStyle = true    // R2 requires path-style URLs
		o.UseAccelerate = false  // no transfer acceleration on R2
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
	}

	// Test connection
	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("failed to connect to R2: %w", err)
	}

	log.Infof("[R2] Successfully initialized client for bucket: %s", cfg.GetBucketName())
	return client, nil
}

// testConnection checks that the bucket is reachable
func (c *Client) testConnection() error {
	ctx := context.Background()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.GetBucketName()),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.config.GetBucketName(), err)
	}

	return nil
}

// UploadPDF uploads raw PDF bytes under the given object key and returns
// the public URL of the object
func (c *Client) UploadPDF(objectKey string, data []byte, resourceID, textbookSlug string) (string, error) {
	ctx := context.Background()
	bucketName := c.config.GetBucketName()

	log.Infof("[R2] Starting upload: s3://%s/%s (Size: %d bytes)", bucketName, objectKey, len(data))

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000"),
		Metadata: map[string]string{
			"resource-id":   resourceID,
			"textbook-slug": textbookSlug,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	log.Infof("[R2] Successfully uploaded: s3://%s/%s", bucketName, objectKey)
	return c.config.PublicURL(objectKey), nil
}

// GetPDF downloads an object's bytes from the bucket
func (c *Client) GetPDF(objectKey string) ([]byte, error) {
	ctx := context.Background()

	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from R2: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return data, nil
}

// DeletePDF deletes an object from the bucket
func (c *Client) DeletePDF(objectKey string) error {
	ctx := context.Background()
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from R2: %w", err)
	}

	log.Infof("[R2] Successfully deleted: s3://%s/%s", bucketName, objectKey)
	return nil
}

// ObjectExists checks if an object exists in the bucket
func (c *Client) ObjectExists(objectKey string) (bool, error) {
	ctx := context.Background()

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// ListKeys returns every object key in the bucket, paging through the
// listing until exhausted
func (c *Client) ListKeys() ([]string, error) {
	ctx := context.Background()
	bucketName := c.config.GetBucketName()

	var keys []string
	var continuationToken *string
	for {
		out, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucketName),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucketName, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuationToken = out.NextContinuationToken
	}

	return keys, nil
}

// PublicURL returns the public download URL for an object key
func (c *Client) PublicURL(objectKey string) string {
	return c.config.PublicURL(objectKey)
}

// ObjectKey returns the canonical bucket key for a section PDF
func (c *Client) ObjectKey(textbookSlug, resourceID string) string {
	return c.config.ObjectKey(textbookSlug, resourceID)
}
