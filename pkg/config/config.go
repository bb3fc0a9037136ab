package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTargetURL = "https://rizstore.my.id/new/katalog"

	// RouteDirect in KATALOG_ROUTES means fetching the target without a relay.
	RouteDirect = "direct"
)

var DefaultRoutes = []string{
	RouteDirect,
	"https://corsproxy.io/?",
	"https://api.allorigins.win/raw?url=",
	"https://cors.eu.org/",
	"https://thingproxy.freeboard.io/fetch/",
	"https://cors-anywhere.herokuapp.com/",
}

type Config struct {
	HTTPAddr        string
	TargetURL       string
	Origin          string
	Routes          []string
	FetchTimeout    time.Duration
	MinBodyBytes    int
	BrowserFallback bool
	ExtractDepth    string
	ExtractWorkers  int
	CacheDBPath     string
	CacheTTL        time.Duration
	Verbose         bool
}

func Load() Config {
	target := getenv("KATALOG_TARGET_URL", DefaultTargetURL)
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":9090"),
		TargetURL:       target,
		Origin:          getenv("KATALOG_ORIGIN", OriginOf(target)),
		Routes:          splitCSV(getenv("KATALOG_ROUTES", strings.Join(DefaultRoutes, ","))),
		FetchTimeout:    time.Duration(getenvPositive("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		MinBodyBytes:    getenvPositive("FETCH_MIN_BYTES", 1000),
		BrowserFallback: getenvBool("BROWSER_FALLBACK", false),
		ExtractDepth:    getenv("EXTRACT_DEPTH", "exhaustive"),
		ExtractWorkers:  getenvPositive("EXTRACT_WORKERS", 4),
		CacheDBPath:     getenv("CACHE_DB_PATH", "./katalog.db"),
		CacheTTL:        time.Duration(getenvInt("CACHE_TTL_MINUTES", 0)) * time.Minute,
		Verbose:         getenvBool("LOG_VERBOSE", false),
	}
}

// OriginOf returns scheme://host of raw, or "" when raw is not an absolute URL.
func OriginOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// getenvPositive falls back to def unless the value is above zero.
func getenvPositive(k string, def int) int {
	if n := getenvInt(k, def); n > 0 {
		return n
	}
	return def
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
