package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

// usEast1 is the only region where CreateBucket must omit a LocationConstraint.
const usEast1 = "us-east-1"

// ObjectStore defines the bucket operations the provisioning stages need.
type ObjectStore interface {
	// EnsureBucket creates the bucket. created is false when the caller
	// already owns it. A bucket owned by another account is a conflict.
	EnsureBucket(ctx context.Context, name string) (created bool, err error)
	UploadFile(ctx context.Context, bucket, key, path string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	// DeleteBucket empties and removes the bucket. Missing buckets are not an error.
	DeleteBucket(ctx context.Context, name string) error
}

// Client wraps the S3 client for the document bucket.
type Client struct {
	s3     *s3.Client
	region string
}

var _ ObjectStore = (*Client)(nil)

// NewFromConfig creates a new S3 client from a loaded AWS config.
func NewFromConfig(cfg aws.Config, optFns ...func(*s3.Options)) *Client {
	return &Client{s3: s3.NewFromConfig(cfg, optFns...), region: cfg.Region}
}

// EnsureBucket creates a new S3 bucket in the client's region.
// Returns created=false if the bucket already exists and is owned by us.
func (c *Client) EnsureBucket(ctx context.Context, bucketName string) (bool, error) {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}
	if c.region != "" && c.region != usEast1 {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}

	_, err := c.s3.CreateBucket(ctx, input)
	if err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return false, nil
		}
		if isBucketAlreadyExists(err) {
			return false, fmt.Errorf("bucket %s is owned by another account: %w", bucketName, awserr.ErrConflict)
		}
		return false, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	return true, nil
}

// isBucketAlreadyOwnedByYou checks if the error indicates the bucket exists and is owned by us.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	var baoby *types.BucketAlreadyOwnedByYou
	if errors.As(err, &baoby) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}

	return false
}

// isBucketAlreadyExists checks if the bucket name is taken by another account.
func isBucketAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var bae *types.BucketAlreadyExists
	if errors.As(err, &bae) {
		return true
	}

	return awserr.HasCode(err, "BucketAlreadyExists")
}

// UploadFile uploads a local file under key.
func (c *Client) UploadFile(ctx context.Context, bucketName, key, path string) error {
	// #nosec G304
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", path, bucketName, key, err)
	}
	return nil
}

// ListObjects lists object keys in a bucket with an optional prefix filter.
func (c *Client) ListObjects(ctx context.Context, bucketName, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.s3, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucketName, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

// DeleteBucket deletes every object in the bucket and then the bucket itself.
func (c *Client) DeleteBucket(ctx context.Context, bucketName string) error {
	keys, err := c.ListObjects(ctx, bucketName, "")
	if err != nil {
		if awserr.IsNotFound(err) {
			return nil
		}
		return err
	}

	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))
		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}
		_, err := c.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucketName),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to empty bucket %s: %w", bucketName, err)
		}
	}

	_, err = c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if awserr.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete bucket %s: %w", bucketName, err)
	}
	return nil
}

// BucketARN returns the ARN of a bucket.
func BucketARN(bucketName string) string {
	return "arn:aws:s3:::" + bucketName
}
