package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 6, 30, 14, 5, 9, 0, time.UTC)
	uuidRe := `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

	assert.Regexp(t, regexp.MustCompile(`^listings/`+uuidRe+`-20240630140509\.jpg$`), objectKey("/listings/", "image/jpeg", now))
	assert.Regexp(t, regexp.MustCompile(`^`+uuidRe+`-20240630140509\.png$`), objectKey("", "image/png", now))
	assert.Regexp(t, regexp.MustCompile(`\.bin$`), objectKey("x", "application/octet-stream", now))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpg"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".svg", extensionFor("image/svg+xml"))
}
