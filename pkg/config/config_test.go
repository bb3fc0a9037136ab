package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "KATALOG_TARGET_URL", "KATALOG_ORIGIN", "KATALOG_ROUTES",
		"FETCH_TIMEOUT_SECONDS", "FETCH_MIN_BYTES", "BROWSER_FALLBACK", "EXTRACT_DEPTH",
		"EXTRACT_WORKERS", "CACHE_DB_PATH", "CACHE_TTL_MINUTES", "LOG_VERBOSE",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, DefaultTargetURL, cfg.TargetURL)
	require.Equal(t, "https://rizstore.my.id", cfg.Origin)
	require.Equal(t, DefaultRoutes, cfg.Routes)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout)
	require.Equal(t, 1000, cfg.MinBodyBytes)
	require.False(t, cfg.BrowserFallback)
	require.Equal(t, "exhaustive", cfg.ExtractDepth)
	require.Zero(t, cfg.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KATALOG_TARGET_URL", "http://shop.example.test/katalog")
	t.Setenv("KATALOG_ORIGIN", "")
	t.Setenv("KATALOG_ROUTES", " direct , http://relay.test/?url= ,,")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("CACHE_TTL_MINUTES", "not-a-number")
	t.Setenv("BROWSER_FALLBACK", "true")

	cfg := Load()
	require.Equal(t, "http://shop.example.test", cfg.Origin)
	require.Equal(t, []string{"direct", "http://relay.test/?url="}, cfg.Routes)
	require.Equal(t, 3*time.Second, cfg.FetchTimeout)
	require.Zero(t, cfg.CacheTTL)
	require.True(t, cfg.BrowserFallback)
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"garbage", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FETCH_TIMEOUT_SECONDS", tt.value)
			t.Setenv("FETCH_MIN_BYTES", tt.value)
			t.Setenv("EXTRACT_WORKERS", tt.value)

			cfg := Load()
			require.Equal(t, 15*time.Second, cfg.FetchTimeout)
			require.Equal(t, 1000, cfg.MinBodyBytes)
			require.Equal(t, 4, cfg.ExtractWorkers)
		})
	}
}

func TestOriginOf(t *testing.T) {
	require.Equal(t, "https://example.test", OriginOf("https://example.test/a/b?c=d"))
	require.Equal(t, "", OriginOf("/relative/path"))
}
