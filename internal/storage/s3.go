package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vitraforge/atelier/internal/config"
)

// Constraints describes the allow-list and size ceiling for one upload kind.
type Constraints struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// AvatarConstraints bounds profile avatar uploads.
var AvatarConstraints = Constraints{
	MaxBytes:     2 << 20, // 2 MB
	AllowedMIMEs: []string{"image/jpeg", "image/png", "image/webp"},
}

// GalleryConstraints bounds gallery and project image uploads.
var GalleryConstraints = Constraints{
	MaxBytes:     5 << 20, // 5 MB
	AllowedMIMEs: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
}

// ErrConstraint reports a rejected upload (wrong type or too large).
type ErrConstraint struct {
	Reason string
}

func (e *ErrConstraint) Error() string { return "upload rejected: " + e.Reason }

// Uploader stores files in an S3-compatible bucket (Cloudflare R2 in
// production) and returns their public URLs.
type Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string // Base URL with a %s placeholder for the object key
	log       *logrus.Logger
}

// NewUploader builds an S3 client pointed at the configured R2 account.
func NewUploader(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKeyID, cfg.StorageAccessSecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.StorageAccountID))
	})

	return &Uploader{
		client:    client,
		bucket:    cfg.StorageBucket,
		publicURL: cfg.StoragePublicURL,
		log:       log,
	}, nil
}

// Upload validates the file against the constraints, stores it under
// <prefix>/<ownerID>/<uuid>_<filename>, and returns the public URL.
func (u *Uploader) Upload(ctx context.Context, prefix, ownerID string, file multipart.File, header *multipart.FileHeader, c Constraints) (string, error) {
	if header.Size > c.MaxBytes {
		return "", &ErrConstraint{Reason: fmt.Sprintf("file exceeds %d MB limit", c.MaxBytes>>20)}
	}
	contentType := header.Header.Get("Content-Type")
	allowed := false
	for _, mime := range c.AllowedMIMEs {
		if contentType == mime {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", &ErrConstraint{Reason: "content type " + contentType + " is not allowed"}
	}

	key := fmt.Sprintf("%s/%s/%s_%s", prefix, ownerID, uuid.NewString(), header.Filename)
	obj, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("object storage: %w", err)
	}
	u.log.WithFields(logrus.Fields{"key": key, "etag": aws.ToString(obj.ETag)}).Info("uploaded object")

	return cleanURL(fmt.Sprintf(u.publicURL, key)), nil
}

// cleanURL escapes spaces and normalizes the public URL for storage.
func cleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return parsedURL.String()
}
