package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"katalog-hunter/pkg/cache"
	"katalog-hunter/pkg/fetch"
	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/models"
	"katalog-hunter/pkg/scrapers/katalog"

	"github.com/stretchr/testify/require"
)

const target = "https://shop.test/katalog"

const page = `<html><body>
<div class="product-card"><h3>Netflix 1 Bulan</h3><span class="price">Rp 45.000</span></div>
<div class="product-card"><h3>Canva Pro</h3><span class="price">Rp 50.000</span></div>
</body></html>`

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCatalog(f fetch.FetcherFunc) (*Catalog, *logger.Recorder) {
	rec := &logger.Recorder{}
	engine := katalog.NewEngine("https://shop.test", katalog.DepthExhaustive, 2)
	engine.Observer = rec

	c := NewCatalog(target, f, engine)
	c.Observer = rec
	c.Now = func() time.Time { return fixedNow }
	return c, rec
}

func servePage(body string) fetch.FetcherFunc {
	return func(ctx context.Context, target string) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestGetFresh(t *testing.T) {
	c, rec := newCatalog(servePage(page))
	env := c.Get(context.Background())

	require.True(t, env.Success)
	require.Equal(t, models.SourceFresh, env.Source)
	require.Equal(t, fixedNow.UnixMilli(), env.Timestamp)
	require.Equal(t, "2026-03-01T12:00:00Z", env.FetchedAt)
	require.Empty(t, env.Error)
	require.Len(t, env.Products, 2)
	require.Equal(t, "NETFLIX", env.Products[0].Name)
	require.True(t, rec.Has(report_fresh))
}

func TestGetNetworkFailureServesStaticCatalog(t *testing.T) {
	netErr := &models.NetworkError{Routes: []string{"direct"}, Errs: []error{errors.New("connection refused")}}
	c, rec := newCatalog(func(ctx context.Context, target string) ([]byte, error) {
		return nil, netErr
	})
	env := c.Get(context.Background())

	require.True(t, env.Success)
	require.Equal(t, models.SourceFallback, env.Source)
	require.Equal(t, netErr.Error(), env.Error)
	require.Empty(t, env.FetchedAt)
	require.Equal(t, katalog.StaticCatalog(), env.Products)
	require.True(t, rec.Has(report_fetch_failed))
}

func TestGetEmptyPageIsFallbackData(t *testing.T) {
	c, _ := newCatalog(servePage(`<html><body><p>maintenance</p></body></html>`))
	env := c.Get(context.Background())

	require.Equal(t, models.SourceFallback, env.Source)
	require.Equal(t, models.ErrNoProducts.Error(), env.Error)
	require.Len(t, env.Products, 12)
}

func TestGetParseErrorIsFallbackData(t *testing.T) {
	c, _ := newCatalog(servePage(""))
	env := c.Get(context.Background())

	require.Equal(t, models.SourceFallback, env.Source)
	require.Contains(t, env.Error, "parse markup")
	require.Len(t, env.Products, 12)
}

func TestGetRecoversFromPanics(t *testing.T) {
	c, rec := newCatalog(func(ctx context.Context, target string) ([]byte, error) {
		panic("boom")
	})
	env := c.Get(context.Background())

	require.True(t, env.Success)
	require.Equal(t, models.SourceFallback, env.Source)
	require.Contains(t, env.Error, "boom")
	require.NotEmpty(t, env.Products)
	require.True(t, rec.Has(report_recovered))
}

func TestGetUsesCacheForFreshDataOnly(t *testing.T) {
	store, err := cache.New(filepath.Join(t.TempDir(), "katalog.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	calls := 0
	body := `<html><body><p>maintenance</p></body></html>`
	c, rec := newCatalog(func(ctx context.Context, target string) ([]byte, error) {
		calls++
		return []byte(body), nil
	})
	c.Cache = store
	c.Now = time.Now

	require.Equal(t, models.SourceFallback, c.Get(context.Background()).Source)
	require.Equal(t, 1, calls)

	body = page
	first := c.Get(context.Background())
	require.Equal(t, models.SourceFresh, first.Source)
	require.Equal(t, 2, calls)

	second := c.Get(context.Background())
	require.Equal(t, first, second)
	require.Equal(t, 2, calls)
	require.True(t, rec.Has(report_cache_hit))
}

func TestProductsNeverEmpty(t *testing.T) {
	c, _ := newCatalog(func(ctx context.Context, target string) ([]byte, error) {
		return nil, context.DeadlineExceeded
	})
	require.NotEmpty(t, c.Products(context.Background()))
}
