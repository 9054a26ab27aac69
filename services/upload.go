package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// ErrInvalidUpload marks a rejected problem image.
var ErrInvalidUpload = errors.New("invalid upload")

var imageTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ImageUpload is a validated problem image.
type ImageUpload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// imageName checks the filename and returns its base name, stripped of any
// client-side directories, and its lower-cased extension.
func imageName(filename string) (name, ext string, err error) {
	name = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "", "", fmt.Errorf("%w: empty filename", ErrInvalidUpload)
	}
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := imageTypes[ext]; !ok {
		return "", "", fmt.Errorf("%w: invalid file type, please upload PNG, JPG, JPEG, GIF or WEBP", ErrInvalidUpload)
	}
	return name, ext, nil
}

// supportedType reports whether mimeType is one of the accepted image types.
func supportedType(mimeType string) bool {
	for _, t := range imageTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// ValidateImage checks name, size and type, and settles the MIME type sent
// upstream. A client-declared type wins over the extension only when it is
// one of the accepted image types.
func ValidateImage(filename, contentType string, data []byte, maxBytes int64) (*ImageUpload, error) {
	name, ext, err := imageName(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidUpload)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidUpload, maxBytes)
	}

	mimeType := imageTypes[ext]
	ct, _, _ := strings.Cut(contentType, ";")
	if ct = strings.ToLower(strings.TrimSpace(ct)); supportedType(ct) {
		mimeType = ct
	}
	return &ImageUpload{Filename: name, MIMEType: mimeType, Data: data}, nil
}

// ReadImageUpload reads and validates a multipart file, never buffering more
// than maxBytes+1 bytes.
func ReadImageUpload(fh *multipart.FileHeader, maxBytes int64) (*ImageUpload, error) {
	if _, _, err := imageName(fh.Filename); err != nil {
		return nil, err
	}
	if fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidUpload, maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return ValidateImage(fh.Filename, fh.Header.Get("Content-Type"), data, maxBytes)
}
