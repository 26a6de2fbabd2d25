package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripshare-backend/internal/storage"
)

// UploadLimits bounds presigned uploads
type UploadLimits struct {
	MaxBytes int64
	Expiry   time.Duration
}

// DefaultUploadLimits is 10 MiB with a five minute presign window
var DefaultUploadLimits = UploadLimits{MaxBytes: 10 << 20, Expiry: 5 * time.Minute}

// UploadRequest represents a request to upload an image
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadResponse represents the response for an upload request
type UploadResponse struct {
	ID        string `json:"id,omitempty"`
	UploadURL string `json:"upload_url"`
	ObjectURL string `json:"object_url"`
	ExpiresIn int    `json:"expires_in"`
}

// normalize fills in defaults and validates the request against limits
func (r *UploadRequest) normalize(limits UploadLimits) error {
	r.ContentType = strings.ToLower(strings.TrimSpace(r.ContentType))
	if r.ContentType == "" {
		r.ContentType = "image/jpeg"
	}
	if !storage.AllowedContentType(r.ContentType) {
		return invalid("content_type", "must be one of image/jpeg, image/png, image/webp, image/gif, image/heic")
	}
	if r.Size <= 0 {
		return invalid("size", "must be positive")
	}
	if limits.MaxBytes > 0 && r.Size > limits.MaxBytes {
		return invalid("size", fmt.Sprintf("must not exceed %d bytes", limits.MaxBytes))
	}
	return nil
}

// presign validates req and returns a presigned PUT for key
func presign(ctx context.Context, objects ObjectStore, limits UploadLimits, key string, req UploadRequest) (*UploadResponse, error) {
	uploadURL, err := objects.PresignUpload(ctx, key, req.ContentType, limits.Expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &UploadResponse{
		UploadURL: uploadURL,
		ObjectURL: objects.PublicURL(key),
		ExpiresIn: int(limits.Expiry.Seconds()),
	}, nil
}

func limitsOrDefault(l UploadLimits) UploadLimits {
	if l.MaxBytes == 0 {
		l.MaxBytes = DefaultUploadLimits.MaxBytes
	}
	if l.Expiry == 0 {
		l.Expiry = DefaultUploadLimits.Expiry
	}
	return l
}
