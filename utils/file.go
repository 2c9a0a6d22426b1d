package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureUploadDir creates the uploads directory if it doesn't exist
func EnsureUploadDir() error {
	return os.MkdirAll("uploads", os.ModePerm)
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	// ✅ Ensure the directory for the destination file exists
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}

// GetUploadPath returns the full path for a file inside the uploads directory
func GetUploadPath(filename string) string {
	return filepath.Join("uploads", filename)
}

// ImageExt picks a file extension for an uploaded image, preferring the
// filename and falling back to the declared content type (e.g. "image/png").
func ImageExt(fileHeader *multipart.FileHeader) string {
	if ext := filepath.Ext(fileHeader.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if idx := strings.Index(contentType, "/"); idx >= 0 && idx+1 < len(contentType) {
		return "." + contentType[idx+1:]
	}
	return ".png"
}

// SaveImage stores an uploaded image under a fresh uuid filename.
// When R2 is configured the image goes to the bucket and the public CDN URL is
// returned; otherwise it lands in the local uploads dir and the returned path
// ("/uploads/<name>") is served by the uploads route.
func SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	fileName := uuid.NewString() + ImageExt(fileHeader)

	if R2Enabled() {
		return UploadFileToR2(fileHeader, "images/"+fileName)
	}

	if err := SaveFile(fileHeader, GetUploadPath(fileName)); err != nil {
		return "", err
	}
	return "/uploads/" + fileName, nil
}
