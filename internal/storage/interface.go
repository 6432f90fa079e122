package storage

import "context"

// ImageUploader stores user-submitted images and returns public URLs.
// Implementations must be safe for concurrent use.
type ImageUploader interface {
	// UploadAvatar stores a profile picture and returns its public URL.
	UploadAvatar(ctx context.Context, userID string, data []byte, fileExtension string) (string, error)

	// UploadPostImage stores an image attached to a post and returns its public URL.
	UploadPostImage(ctx context.Context, userID string, data []byte, fileExtension string) (string, error)

	// DeleteFile removes a file by its public URL. Deleting a URL that does
	// not belong to this store is a no-op.
	DeleteFile(ctx context.Context, fileURL string) error
}
