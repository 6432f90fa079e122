package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetContentTypeForImage(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".jpg", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".JPG", "image/jpeg"},
		{".png", "image/png"},
		{".gif", "image/gif"},
		{".webp", "image/webp"},
		{"png", "image/png"},
		{".bmp", "application/octet-stream"},
		{".pdf", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.expected, getContentTypeForImage(tt.ext))
		})
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"jpg", ".jpg"},
		{".jpg", ".jpg"},
		{" .PNG ", ".png"},
		{"WEBP", ".webp"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeExtension(tt.in))
	}
}

func TestDeleteFileIgnoresForeignURL(t *testing.T) {
	u := &S3Uploader{baseURL: "https://cdn.example.com"}

	err := u.DeleteFile(context.Background(), "https://other-cdn.example.org/avatars/u1/x.png")
	assert.NoError(t, err)
}
