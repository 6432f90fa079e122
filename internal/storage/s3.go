package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
)

// S3Uploader stores images in an S3 bucket fronted by a CDN. Public URLs
// are built from the CDN base URL, not the raw bucket endpoint.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Uploader creates an uploader using the default AWS credential chain.
func NewS3Uploader(region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// UploadAvatar stores a profile picture under avatars/{userID}/{uuid}{ext}.
// Avatars are re-uploaded under a fresh key on every change so CDN caches
// never serve a stale image.
func (u *S3Uploader) UploadAvatar(ctx context.Context, userID string, data []byte, fileExtension string) (string, error) {
	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), normalizeExtension(fileExtension))
	return u.putObject(ctx, key, userID, data, fileExtension)
}

// UploadPostImage stores a post attachment under posts/{year}/{month}/{userID}/{uuid}{ext}.
func (u *S3Uploader) UploadPostImage(ctx context.Context, userID string, data []byte, fileExtension string) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("posts/%d/%02d/%s/%s%s",
		now.Year(), now.Month(), userID, uuid.New().String(), normalizeExtension(fileExtension))
	return u.putObject(ctx, key, userID, data, fileExtension)
}

func (u *S3Uploader) putObject(ctx context.Context, key, userID string, data []byte, fileExtension string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(getContentTypeForImage(fileExtension)),
		CacheControl: aws.String("public, max-age=31536000"),
		Metadata: map[string]string{
			"uploaded-by": userID,
			"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		logger.Log.Error("Failed to upload image to S3",
			zap.String("bucket", u.bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	fileURL := fmt.Sprintf("%s/%s", u.baseURL, key)

	logger.Log.Info("Uploaded image to S3",
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
		zap.String("url", fileURL))

	return fileURL, nil
}

// DeleteFile removes an object by its public URL. URLs outside this
// uploader's CDN base are ignored.
func (u *S3Uploader) DeleteFile(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, u.baseURL+"/") {
		return nil
	}
	key := strings.TrimPrefix(fileURL, u.baseURL+"/")

	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Log.Error("Failed to delete file from S3",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Log.Info("Deleted file from S3", zap.String("key", key))
	return nil
}

// CheckBucketAccess verifies the bucket exists and credentials can reach it.
// Called at startup so misconfiguration fails fast instead of on first upload.
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func getContentTypeForImage(fileExtension string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileExtension), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
