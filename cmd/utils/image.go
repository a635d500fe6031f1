package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxImageSize = 10 << 20 // 10 MB
	ImagePath    = "uploads/images"
)

// Post images and profile pictures share one store; a stored file is only
// ever referred to by the URL returned here.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveImage stores an uploaded image on disk and returns the URL path it is
// served under. Callers treat the return value as an opaque URL; nothing
// else in the system reads the file bytes.
func SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", fmt.Errorf("image exceeds the %d MB limit", MaxImageSize/(1<<20))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	if err := os.MkdirAll(ImagePath, 0755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	// Uploads are stored under a fresh name; the client's filename only
	// contributes the extension.
	filename := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(ImagePath, filename))
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}

	return "/images/" + filename, nil
}

// DeleteImage removes a stored image by its URL. A missing file is not an
// error; the caller is cleaning up and the outcome is the same.
func DeleteImage(imageURL string) error {
	path := filepath.Join(ImagePath, filepath.Base(imageURL))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(path)
}
