package service

import (
	"context"
	"fmt"
	"time"

	"katalog-hunter/pkg/fetch"
	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/models"
	"katalog-hunter/pkg/scrapers/katalog"

	"github.com/google/uuid"
)

const (
	report_cache_hit    = "cache-hit"
	report_fresh        = "fresh"
	report_fallback     = "fallback"
	report_recovered    = "recovered"
	report_fetch_failed = "fetch-failed"
)

// Snapshots stores fresh envelopes between requests.
type Snapshots interface {
	Get(target string) (*models.Envelope, bool)
	Set(target string, env models.Envelope, fetchedAt time.Time)
}

// Catalog answers catalog requests. Get never fails: any retrieval or parsing
// problem yields the static catalog marked as fallback data.
type Catalog struct {
	Target   string
	Fetcher  fetch.Fetcher
	Engine   *katalog.Engine
	Cache    Snapshots
	Observer logger.Observer
	Now      func() time.Time
}

func NewCatalog(target string, fetcher fetch.Fetcher, engine *katalog.Engine) *Catalog {
	return &Catalog{
		Target:   target,
		Fetcher:  fetcher,
		Engine:   engine,
		Observer: logger.Scoped("catalog", logger.SlogObserver{}),
		Now:      time.Now,
	}
}

func (c *Catalog) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Catalog) observer() logger.Observer {
	if c.Observer == nil {
		return logger.SlogObserver{}
	}
	return c.Observer
}

// Get fetches and extracts the catalog.
func (c *Catalog) Get(ctx context.Context) (env models.Envelope) {
	runID := uuid.NewString()
	obs := c.observer()

	defer func() {
		if r := recover(); r != nil {
			obs.ReportBroken(report_recovered, runID, fmt.Sprint(r))
			env = models.NewFallbackEnvelope(katalog.StaticCatalog(), c.now(), fmt.Errorf("internal error: %v", r))
		}
	}()

	if c.Cache != nil {
		if cached, ok := c.Cache.Get(c.Target); ok {
			obs.ReportDebug(report_cache_hit, runID, c.Target)
			return *cached
		}
	}

	res, err := c.scrape(ctx)
	now := c.now()
	if err != nil {
		obs.ReportWarning(report_fetch_failed, runID, err.Error())
		return models.NewFallbackEnvelope(katalog.StaticCatalog(), now, err)
	}
	if !res.Live() {
		obs.ReportWarning(report_fallback, runID, string(res.Stage))
		return models.NewFallbackEnvelope(res.Offers, now, models.ErrNoProducts)
	}

	env = models.NewFreshEnvelope(res.Offers, now)
	obs.ReportDebug(report_fresh, runID, string(res.Stage), len(res.Offers))
	if c.Cache != nil {
		c.Cache.Set(c.Target, env, now)
	}
	return env
}

// Products returns only the offers of Get. The result is never empty.
func (c *Catalog) Products(ctx context.Context) []models.ProductOffer {
	return c.Get(ctx).Products
}

func (c *Catalog) scrape(ctx context.Context) (katalog.Result, error) {
	body, err := c.Fetcher.Fetch(ctx, c.Target)
	if err != nil {
		return katalog.Result{}, err
	}
	return c.Engine.ExtractHTML(ctx, body)
}
