// Package storage wraps the S3-compatible bucket that holds trip photos,
// post images and avatars.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	appconfig "tripshare-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxDeleteBatch is the S3 DeleteObjects limit
const maxDeleteBatch = 1000

// S3Store issues presigned uploads and removes objects
type S3Store struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3Store creates a store from configuration. Static credentials are used
// when an access key is configured, otherwise the default AWS chain applies.
func NewS3Store(ctx context.Context, cfg appconfig.AWSConfig) (*S3Store, error) {
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

	return &S3Store{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.S3Bucket,
		region:        cfg.Region,
		publicBaseURL: publicBase(cfg),
	}, nil
}

func publicBase(cfg appconfig.AWSConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
	}
}

// PresignUpload returns a URL the client can PUT the object body to
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}
	return req.URL, nil
}

// PublicURL returns the URL an uploaded object is served from
func (s *S3Store) PublicURL(key string) string {
	return PublicURL(s.publicBaseURL, key)
}

// Delete removes objects, batching to the DeleteObjects limit
func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			return fmt.Errorf("failed to delete %d objects: %s", len(out.Errors), aws.ToString(out.Errors[0].Message))
		}
	}
	return nil
}

// PublicURL joins a base URL and an object key, escaping each key segment
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + path.Join(segments...)
}

// Key builds an object key from a prefix, an owner scope, an object ID and
// the extension implied by contentType
func Key(prefix, scope, id, contentType string) string {
	return fmt.Sprintf("%s/%s/%s%s", prefix, scope, id, Extension(contentType))
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// AllowedContentType reports whether contentType is an accepted image type
func AllowedContentType(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

// Extension returns the file extension for an image content type
func Extension(contentType string) string {
	return extensions[contentType]
}
