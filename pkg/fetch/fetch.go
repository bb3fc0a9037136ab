package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/models"

	"github.com/gocolly/colly/v2"
)

const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	AcceptLanguage = "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"

	RouteDirect  = "direct"
	RouteBrowser = "headless-browser"

	report_route_failed = "route-failed"
	report_route_ok     = "route-ok"
)

var ErrBodyTooSmall = errors.New("response body too small")

// Fetcher retrieves the raw markup behind target.
type Fetcher interface {
	Fetch(ctx context.Context, target string) ([]byte, error)
}

type FetcherFunc func(ctx context.Context, target string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, target string) ([]byte, error) {
	return f(ctx, target)
}

// RelayFetcher walks Routes in order and returns the first response that passes
// the status and size checks. Browser, when set, is tried after every relay.
type RelayFetcher struct {
	Routes       []string
	Timeout      time.Duration
	MinBodyBytes int
	Browser      Fetcher
	Observer     logger.Observer
}

func NewRelayFetcher(routes []string, timeout time.Duration, minBodyBytes int) *RelayFetcher {
	if len(routes) == 0 {
		routes = []string{RouteDirect}
	}
	return &RelayFetcher{
		Routes:       routes,
		Timeout:      timeout,
		MinBodyBytes: minBodyBytes,
		Observer:     logger.Scoped("fetch", logger.SlogObserver{}),
	}
}

// RouteURL builds the URL requested for target through route.
func RouteURL(route, target string) string {
	if route == "" || route == RouteDirect {
		return target
	}
	return route + url.QueryEscape(target)
}

func (f *RelayFetcher) observer() logger.Observer {
	if f.Observer == nil {
		return logger.Scoped("fetch", logger.SlogObserver{})
	}
	return f.Observer
}

func (f *RelayFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	netErr := &models.NetworkError{}

	for i, route := range f.Routes {
		body, err := f.visit(ctx, RouteURL(route, target))
		if err == nil {
			f.observer().ReportDebug(report_route_ok, route, i+1, len(f.Routes), len(body))
			return body, nil
		}
		f.observer().ReportWarning(report_route_failed, route, i+1, len(f.Routes), err.Error())
		netErr.Routes = append(netErr.Routes, route)
		netErr.Errs = append(netErr.Errs, fmt.Errorf("%s: %w", route, err))

		if ctx.Err() != nil {
			return nil, netErr
		}
	}

	if f.Browser != nil {
		body, err := f.Browser.Fetch(ctx, target)
		if err == nil {
			err = f.checkSize(body)
		}
		if err == nil {
			f.observer().ReportDebug(report_route_ok, RouteBrowser, len(body))
			return body, nil
		}
		f.observer().ReportWarning(report_route_failed, RouteBrowser, err.Error())
		netErr.Routes = append(netErr.Routes, RouteBrowser)
		netErr.Errs = append(netErr.Errs, fmt.Errorf("%s: %w", RouteBrowser, err))
	}

	return nil, netErr
}

func (f *RelayFetcher) visit(ctx context.Context, link string) ([]byte, error) {
	var cancel context.CancelFunc
	if f.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	c := colly.NewCollector(
		colly.UserAgent(UserAgent),
		colly.AllowURLRevisit(),
	)
	c.Context = ctx
	if f.Timeout > 0 {
		c.SetRequestTimeout(f.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml")
		r.Headers.Set("Accept-Language", AcceptLanguage)
		r.Headers.Set("Cache-Control", "no-cache")
		r.Headers.Set("Pragma", "no-cache")
	})

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(link); err != nil {
		return nil, err
	}
	if err := f.checkSize(body); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *RelayFetcher) checkSize(body []byte) error {
	if len(body) == 0 || len(body) < f.MinBodyBytes {
		return fmt.Errorf("%w: %d bytes, want at least %d", ErrBodyTooSmall, len(body), f.MinBodyBytes)
	}
	return nil
}
