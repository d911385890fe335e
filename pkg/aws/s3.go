package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/vincent-petithory/dataurl"
)

// NewS3Client creates a new S3 client from AWS config. Path-style addressing
// is forced when a custom endpoint (LocalStack, MinIO) is in use.
func NewS3Client(cfg sdkaws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = sdkaws.String(endpoint)
		}
	})
}

// S3API is the subset of the S3 client used by S3ImageStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ErrForeignURL is returned by Delete for URLs this store did not produce.
var ErrForeignURL = errors.New("url does not belong to this bucket")

// S3ImageStore stores data-URL encoded images as S3 objects and hands back
// their public URL.
type S3ImageStore struct {
	client    S3API
	bucket    string
	prefix    string
	endpoint  string
	cdnDomain string
}

func NewS3ImageStore(client S3API, bucket, prefix, endpoint, cdnDomain string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

// Upload decodes dataURL and writes it under <prefix><folder>/<uuid><ext>.
func (s *S3ImageStore) Upload(ctx context.Context, dataURL, folder string) (string, error) {
	decoded, err := dataurl.DecodeString(dataURL)
	if err != nil {
		return "", fmt.Errorf("invalid data url: %w", err)
	}
	if len(decoded.Data) == 0 {
		return "", fmt.Errorf("invalid data url: empty payload")
	}

	contentType := decoded.MediaType.ContentType()
	key := s.objectKey(folder, uuid.NewString()+extensionFor(contentType))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       sdkaws.String(s.bucket),
		Key:          sdkaws.String(key),
		Body:         bytes.NewReader(decoded.Data),
		ContentType:  sdkaws.String(contentType),
		CacheControl: sdkaws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	return s.publicURL(key), nil
}

// Delete removes the object behind a URL previously returned by Upload.
func (s *S3ImageStore) Delete(ctx context.Context, imageURL string) error {
	base := s.publicURL("")
	if !strings.HasPrefix(imageURL, base) {
		return ErrForeignURL
	}
	key := strings.TrimPrefix(imageURL, base)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(s.bucket),
		Key:    sdkaws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete s3 object %s: %w", key, err)
	}
	return nil
}

func (s *S3ImageStore) objectKey(folder, name string) string {
	return s.prefix + path.Join(strings.Trim(folder, "/"), name)
}

func (s *S3ImageStore) publicURL(key string) string {
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(s.cdnDomain, "/"), key)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
