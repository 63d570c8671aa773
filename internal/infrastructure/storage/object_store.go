package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore uploads listing images. Upload returns the object key that is
// stored on the listing; BaseURL is the prefix that turns a key into a URL.
type ObjectStore interface {
	Upload(ctx context.Context, folder string, file io.Reader, size int64, contentType string) (string, error)
	BaseURL() string
	Close() error
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}

// objectKey builds "<folder>/<uuid>-<timestamp><ext>".
func objectKey(folder, contentType string, now time.Time) string {
	folder = strings.Trim(folder, "/")
	name := fmt.Sprintf("%s-%s%s", uuid.New().String(), now.Format("20060102150405"), extensionFor(contentType))
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}
