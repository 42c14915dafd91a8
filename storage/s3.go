package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

const multipartLimit = 100 << 20

// S3 stores objects in an S3-compatible bucket (Cloudflare R2) under
// keys mirroring the local layout: <username>/<folderType>/<name>.
type S3 struct {
	c      *s3.Client
	bucket *string
}

func NewS3() (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("cloudflare.access_key_id"),
			viper.GetString("cloudflare.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("cloudflare.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", viper.GetString("cloudflare.account_id")))
		o.Region = "auto"
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		c:      client,
		bucket: bucket,
	}, nil
}

func objectKey(username, folderType, name string) string {
	return path.Join(username, folderType, name)
}

// Provision is a no-op, S3 keys don't need parent directories.
func (s *S3) Provision(context.Context, string) error {
	return nil
}

func (s *S3) Write(ctx context.Context, username, folderType, name string, data []byte) error {
	key := objectKey(username, folderType, name)
	size := int64(len(data))

	if size > multipartLimit {
		u := manager.NewUploader(s.c, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		_, err := u.Upload(ctx, &s3.PutObjectInput{
			Bucket:        s.bucket,
			Key:           &key,
			Body:          bytes.NewReader(data),
			ContentLength: &size,
		})
		if err != nil {
			return fmt.Errorf("failed to upload object, %w", err)
		}

		return nil
	}

	_, err := s.c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: &size,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object, %w", err)
	}

	return nil
}

func (s *S3) Read(ctx context.Context, username, folderType, name string) ([]byte, error) {
	key := objectKey(username, folderType, name)

	out, err := s.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.bucket,
		Key:    &key,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, fmt.Errorf("object missing, %w", fs.ErrNotExist)
		}

		return nil, fmt.Errorf("failed to fetch object, %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body, %w", err)
	}

	return data, nil
}

// Remove deletes the object. S3 DeleteObject already succeeds for
// missing keys, which matches the best-effort contract.
func (s *S3) Remove(ctx context.Context, username, folderType, name string) error {
	key := objectKey(username, folderType, name)

	_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object, %w", err)
	}

	return nil
}
