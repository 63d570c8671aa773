package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/config"
)

type recordingUploader struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (u *recordingUploader) Upload(ctx context.Context, folder string, file io.Reader, size int64, contentType string) (string, error) {
	if u.fail {
		return "", errors.New("bucket unavailable")
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	if int64(len(body)) != size || !strings.HasPrefix(string(body), "<svg") {
		return "", errors.New("unexpected body")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	key := folder + "/" + contentType
	u.keys = append(u.keys, key)
	return key, nil
}

func newMemoryApp(t *testing.T) *App {
	t.Helper()
	a, err := NewApp(context.Background(), &config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewAppMemory(t *testing.T) {
	a := newMemoryApp(t)
	assert.Equal(t, config.DriverMemory, a.Driver())
	assert.NotNil(t, a.Listings)
	assert.NotNil(t, a.Categories)
	assert.NotNil(t, a.Changes)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestNewAppUnknownDriver(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{StoreDriver: "sqlite"})
	assert.Error(t, err)
}

func TestSeedPopulatesStore(t *testing.T) {
	ctx := context.Background()
	a := newMemoryApp(t)
	uploader := &recordingUploader{}

	result, err := Seed(ctx, a.Categories, a.Listings, uploader, "seed-user")
	require.NoError(t, err)
	assert.Equal(t, len(sampleCategories), result.Categories)
	assert.Equal(t, len(sampleListings), result.Listings)
	assert.Equal(t, len(sampleListings), result.Images)
	assert.Zero(t, result.Skipped)

	listings, err := a.Listings.List(ctx, repository.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, listings, len(sampleListings))
	assert.Equal(t, "Desk lamp", listings[0].Title, "newest sample first")
	for _, l := range listings {
		assert.NotEmpty(t, l.CategoryName())
		assert.Equal(t, []string{"listings/image/svg+xml"}, l.Images)
		assert.True(t, l.Condition.Valid())
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	ctx := context.Background()
	a := newMemoryApp(t)

	_, err := Seed(ctx, a.Categories, a.Listings, nil, "seed-user")
	require.NoError(t, err)
	result, err := Seed(ctx, a.Categories, a.Listings, nil, "seed-user")
	require.NoError(t, err)

	assert.Zero(t, result.Categories)
	assert.Zero(t, result.Listings)
	assert.Equal(t, len(sampleCategories)+len(sampleListings), result.Skipped)

	categories, err := a.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(sampleCategories))
}

func TestSeedToleratesUploadFailure(t *testing.T) {
	a := newMemoryApp(t)

	result, err := Seed(context.Background(), a.Categories, a.Listings, &recordingUploader{fail: true}, "seed-user")
	require.NoError(t, err)
	assert.Equal(t, len(sampleListings), result.Listings)
	assert.Zero(t, result.Images)
}

func TestSampleImageEscapesTitle(t *testing.T) {
	svg := string(sampleImage(`Tom & Jerry <DVD>`, "#000"))
	assert.Contains(t, svg, "Tom &amp; Jerry &lt;DVD&gt;")
}
