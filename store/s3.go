package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const imagePrefix = "images/"

// S3Blobs keeps blobs under images/<id> in one bucket
type S3Blobs struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Blobs loads the default AWS credential chain for region.
func NewS3Blobs(ctx context.Context, region, bucket string) (*S3Blobs, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Blobs{client: client, presign: s3.NewPresignClient(client), bucket: bucket}, nil
}

func (b *S3Blobs) PutBlob(ctx context.Context, id string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(imagePrefix + id),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob to S3: %w", err)
	}
	return nil
}

func (b *S3Blobs) GetBlob(ctx context.Context, id string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(imagePrefix + id),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to fetch blob from S3: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// PresignBlob returns a GET link valid for one hour.
func (b *S3Blobs) PresignBlob(ctx context.Context, id string) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(imagePrefix + id),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %v", err)
	}
	return req.URL, nil
}
