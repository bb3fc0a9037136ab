package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/models"

	"github.com/stretchr/testify/require"
)

const target = "https://rizstore.my.id/new/katalog"

type relayLog struct {
	mu       sync.Mutex
	paths    []string
	ua       string
	lang     string
	relayArg string
}

func newRelayServer(t *testing.T, log *relayLog) *httptest.Server {
	page := "<html><body>" + strings.Repeat("<div class=\"card\"><h3>NETFLIX 1 BULAN</h3></div>", 40) + "</body></html>"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.mu.Lock()
		log.paths = append(log.paths, r.URL.Path)
		log.mu.Unlock()

		switch r.URL.Path {
		case "/broken":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		case "/hang":
			select {
			case <-r.Context().Done():
				return
			case <-time.After(3 * time.Second):
			}
			w.Write([]byte(page))
		case "/tiny":
			w.Write([]byte("<html></html>"))
		case "/ok":
			log.mu.Lock()
			log.ua = r.Header.Get("User-Agent")
			log.lang = r.Header.Get("Accept-Language")
			log.relayArg = r.URL.Query().Get("url")
			log.mu.Unlock()
			w.Write([]byte(page))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRelayFetcherAdvancesToFirstHealthyRoute(t *testing.T) {
	log := &relayLog{}
	ts := newRelayServer(t, log)
	rec := &logger.Recorder{}

	f := NewRelayFetcher([]string{
		ts.URL + "/broken?url=",
		ts.URL + "/tiny?url=",
		ts.URL + "/ok?url=",
	}, 5*time.Second, 1000)
	f.Observer = rec

	body, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Contains(t, string(body), "NETFLIX 1 BULAN")

	require.Equal(t, []string{"/broken", "/tiny", "/ok"}, log.paths)
	require.Equal(t, UserAgent, log.ua)
	require.Equal(t, AcceptLanguage, log.lang)
	require.Equal(t, target, log.relayArg)

	require.Len(t, rec.Find(report_route_failed), 2)
	require.True(t, rec.Has(report_route_ok))
}

func TestRelayFetcherExhaustedRoutes(t *testing.T) {
	log := &relayLog{}
	ts := newRelayServer(t, log)

	routes := []string{ts.URL + "/broken?url=", ts.URL + "/tiny?url="}
	f := NewRelayFetcher(routes, 5*time.Second, 1000)
	f.Observer = &logger.Recorder{}

	_, err := f.Fetch(context.Background(), target)
	require.Error(t, err)

	var netErr *models.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, routes, netErr.Routes)
	require.ErrorIs(t, err, ErrBodyTooSmall)
	for _, r := range routes {
		require.Contains(t, err.Error(), r)
	}
}

func TestRelayFetcherBrowserIsLastResort(t *testing.T) {
	log := &relayLog{}
	ts := newRelayServer(t, log)

	called := false
	f := NewRelayFetcher([]string{ts.URL + "/broken?url="}, 5*time.Second, 10)
	f.Observer = &logger.Recorder{}
	f.Browser = FetcherFunc(func(ctx context.Context, u string) ([]byte, error) {
		called = true
		require.Equal(t, target, u)
		return []byte("<html><body>rendered</body></html>"), nil
	})

	body, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.True(t, called)
	require.Contains(t, string(body), "rendered")
}

func TestRelayFetcherBrowserFailureIsNamed(t *testing.T) {
	f := NewRelayFetcher([]string{"http://127.0.0.1:1/?url="}, time.Second, 10)
	f.Observer = &logger.Recorder{}
	f.Browser = FetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("no chrome")
	})

	_, err := f.Fetch(context.Background(), target)
	var netErr *models.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, []string{"http://127.0.0.1:1/?url=", RouteBrowser}, netErr.Routes)
}

func TestRelayFetcherCutsOffHangingRoute(t *testing.T) {
	log := &relayLog{}
	ts := newRelayServer(t, log)
	rec := &logger.Recorder{}

	hang := ts.URL + "/hang?url="
	f := NewRelayFetcher([]string{hang, ts.URL + "/ok?url="}, 300*time.Millisecond, 1000)
	f.Observer = rec

	start := time.Now()
	body, err := f.Fetch(context.Background(), target)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Contains(t, string(body), "NETFLIX 1 BULAN")
	require.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)

	failed := rec.Find(report_route_failed)
	require.Len(t, failed, 1)
	require.Equal(t, hang, failed[0].Params[0])
}

func TestRelayFetcherStopsWhenContextEnds(t *testing.T) {
	log := &relayLog{}
	ts := newRelayServer(t, log)

	hang := ts.URL + "/hang?url="
	f := NewRelayFetcher([]string{hang, ts.URL + "/ok?url="}, 5*time.Second, 1000)
	f.Observer = &logger.Recorder{}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, target)
	require.Less(t, time.Since(start), 2*time.Second)

	var netErr *models.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, []string{hang}, netErr.Routes)

	log.mu.Lock()
	defer log.mu.Unlock()
	require.NotContains(t, log.paths, "/ok")
}

func TestRelayFetcherWithoutObserver(t *testing.T) {
	log := &relayLog{}
	ts := newRelayServer(t, log)

	f := &RelayFetcher{
		Routes:       []string{ts.URL + "/broken?url=", ts.URL + "/ok?url="},
		Timeout:      5 * time.Second,
		MinBodyBytes: 1000,
	}
	body, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.NotEmpty(t, body)
}

func TestRouteURL(t *testing.T) {
	require.Equal(t, target, RouteURL(RouteDirect, target))
	require.Equal(t, target, RouteURL("", target))
	require.Equal(t,
		"https://corsproxy.io/?https%3A%2F%2Frizstore.my.id%2Fnew%2Fkatalog",
		RouteURL("https://corsproxy.io/?", target),
	)
}
