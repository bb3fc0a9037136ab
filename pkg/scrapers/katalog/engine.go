package katalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

const (
	report_matcher_empty     = "matcher-empty"
	report_candidates        = "candidates"
	report_candidate_skipped = "candidate-skipped"
	report_candidate_failed  = "candidate-failed"
	report_product           = "product"
	report_fallback_headings = "fallback-headings"
	report_fallback_blocks   = "fallback-blocks"
	report_fallback_static   = "fallback-static"
	report_products          = "products"
)

// Depth selects how hard the engine works before giving up on the page.
type Depth int

const (
	// DepthMinimal only tries the class-name matcher.
	DepthMinimal Depth = iota + 1
	// DepthStandard adds the structural and textual matchers.
	DepthStandard
	// DepthExhaustive also runs the heading and text-block fallbacks.
	DepthExhaustive
)

func (d Depth) String() string {
	switch d {
	case DepthMinimal:
		return "minimal"
	case DepthStandard:
		return "standard"
	case DepthExhaustive:
		return "exhaustive"
	}
	return fmt.Sprintf("depth(%d)", int(d))
}

func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return DepthMinimal, nil
	case "standard":
		return DepthStandard, nil
	case "", "exhaustive":
		return DepthExhaustive, nil
	}
	return 0, fmt.Errorf("unknown extraction depth %q", s)
}

// Stage names the step of the chain that produced a Result.
type Stage string

const (
	StagePrimary  Stage = "primary"
	StageHeadings Stage = "fallback-headings"
	StageBlocks   Stage = "fallback-blocks"
	StageStatic   Stage = "static"
)

type Result struct {
	Offers []models.ProductOffer
	Stage  Stage
}

// Live reports whether the offers came from the page rather than the static catalog.
func (r Result) Live() bool {
	return r.Stage != StageStatic
}

// Engine turns storefront markup into product offers.
type Engine struct {
	// Origin resolves relative image paths.
	Origin   string
	Depth    Depth
	Workers  int
	Observer logger.Observer
}

func NewEngine(origin string, depth Depth, workers int) *Engine {
	return &Engine{
		Origin:   origin,
		Depth:    depth,
		Workers:  workers,
		Observer: logger.Scoped("katalog", logger.SlogObserver{}),
	}
}

func (e *Engine) observer() logger.Observer {
	if e.Observer == nil {
		return logger.SlogObserver{}
	}
	return e.Observer
}

// ExtractHTML parses body and runs Extract on it.
func (e *Engine) ExtractHTML(ctx context.Context, body []byte) (Result, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Result{}, &models.ParseError{Err: errors.New("empty document")}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, &models.ParseError{Err: err}
	}
	return e.Extract(ctx, doc), nil
}

// Extract always returns offers: when nothing on the page yields a product
// the static catalog is returned with StageStatic.
func (e *Engine) Extract(ctx context.Context, doc *goquery.Document) Result {
	obs := e.observer()

	if offers := normalize(e.extractAll(ctx, e.classify(doc))); len(offers) > 0 {
		obs.ReportCount(report_products, int64(len(offers)))
		return Result{Offers: offers, Stage: StagePrimary}
	}

	if e.Depth >= DepthExhaustive && ctx.Err() == nil {
		if offers := normalize(headingOffers(doc)); len(offers) > 0 {
			obs.ReportWarning(report_fallback_headings, len(offers))
			return Result{Offers: offers, Stage: StageHeadings}
		}
		if offers := normalize(blockOffers(doc)); len(offers) > 0 {
			obs.ReportWarning(report_fallback_blocks, len(offers))
			return Result{Offers: offers, Stage: StageBlocks}
		}
	}

	offers := StaticCatalog()
	obs.ReportWarning(report_fallback_static, len(offers))
	return Result{Offers: offers, Stage: StageStatic}
}

// extractAll reads candidates in parallel. Results keep candidate order and a
// failing candidate only loses itself.
func (e *Engine) extractAll(ctx context.Context, cards []*goquery.Selection) []models.ProductOffer {
	if len(cards) == 0 {
		return nil
	}
	obs := e.observer()
	slots := make([]*models.ProductOffer, len(cards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Workers, 1))
	for i, card := range cards {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			offer, err := e.safeExtract(i, card)
			if err != nil {
				var invalid *models.ValidationError
				if errors.As(err, &invalid) {
					obs.ReportDebug(report_candidate_skipped, i+1, invalid.Field, invalid.Value)
				} else {
					obs.ReportBroken(report_candidate_failed, i+1, err.Error())
				}
				return nil
			}
			obs.ReportDebug(report_product, offer.Name, offer.Price, offer.Stock, offer.Packages)
			slots[i] = &offer
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.ProductOffer, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func (e *Engine) safeExtract(i int, card *goquery.Selection) (offer models.ProductOffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &models.ExtractionError{Index: i, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return e.extractCard(i, card)
}
