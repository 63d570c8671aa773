package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PolicyNotify, cfg.ListingErrorPolicy)
	assert.Equal(t, PolicyLog, cfg.CategoryErrorPolicy)
	assert.Equal(t, ViewModeAtomic, cfg.ViewIncrementMode)
	assert.Equal(t, "/placeholder.svg", cfg.PlaceholderImage)
	assert.Equal(t, time.Minute, cfg.ViewRateWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("CATEGORY_ERROR_POLICY", "notify")
	t.Setenv("VIEW_INCREMENT_MODE", "read_write")
	t.Setenv("VIEW_RATE_WINDOW", "30s")
	t.Setenv("VIEW_RATE_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, PolicyNotify, cfg.CategoryErrorPolicy)
	assert.Equal(t, ViewModeReadWrite, cfg.ViewIncrementMode)
	assert.Equal(t, 30*time.Second, cfg.ViewRateWindow)
	assert.Equal(t, 5, cfg.ViewRateLimit)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("unknown policy", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("LISTING_ERROR_POLICY", "shout")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown view mode", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("VIEW_INCREMENT_MODE", "eventual")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestAllowedOriginsList(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ALLOWED_ORIGINS", " https://shop.example.com, ,http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shop.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.0/24")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.0/24"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "not-a-cidr")
	_, err = Load()
	assert.Error(t, err)
}
