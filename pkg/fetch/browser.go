package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders target in headless Chrome and returns the document HTML.
// It is the route of last resort for pages that only serve markup to real browsers.
type BrowserFetcher struct {
	Timeout time.Duration
}

func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{Timeout: timeout}
}

func (b *BrowserFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	runCtx, cancelRun := context.WithTimeout(browserCtx, b.Timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}
	return []byte(html), nil
}
