package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Storage implements Storage for Amazon S3. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type S3Storage struct {
	bucket   string
	prefix   string
	uploader s3manageriface.UploaderAPI
}

// NewS3Storage creates an S3Storage for bucket in region. Keys are stored
// under prefix.
func NewS3Storage(region, bucket, prefix string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return newS3Storage(s3manager.NewUploader(sess), bucket, prefix), nil
}

func newS3Storage(uploader s3manageriface.UploaderAPI, bucket, prefix string) *S3Storage {
	return &S3Storage{bucket: bucket, prefix: prefix, uploader: uploader}
}

// Put uploads body to prefix/key.
func (s *S3Storage) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}
