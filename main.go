package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"katalog-hunter/pkg/api"
	"katalog-hunter/pkg/cache"
	"katalog-hunter/pkg/config"
	"katalog-hunter/pkg/fetch"
	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/scrapers/katalog"
	"katalog-hunter/pkg/service"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "katalog-hunter",
	Short: "Scrapes a storefront catalog page and serves it as JSON.",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves GET /api/katalog (default command).",
	RunE:  runServe,
}

var (
	scrapeURL   string
	scrapeDepth string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--url <page>] [--depth minimal|standard|exhaustive]",
	Short: "Scrapes the catalog once and prints the envelope.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if scrapeURL != "" {
			cfg.TargetURL = scrapeURL
			cfg.Origin = config.OriginOf(scrapeURL)
		}
		if scrapeDepth != "" {
			cfg.ExtractDepth = scrapeDepth
		}
		cfg.CacheTTL = 0

		catalog, closeFn, err := buildCatalog(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.Get(cmd.Context()))
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "catalog page to scrape instead of KATALOG_TARGET_URL")
	scrapeCmd.Flags().StringVar(&scrapeDepth, "depth", "", "extraction depth instead of EXTRACT_DEPTH")
	rootCmd.AddCommand(serveCmd, scrapeCmd)
}

func main() {
	_ = godotenv.Load()
	logger.Init(config.Load().Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildCatalog wires fetcher, engine and optional cache from cfg.
func buildCatalog(cfg config.Config) (*service.Catalog, func(), error) {
	depth, err := katalog.ParseDepth(cfg.ExtractDepth)
	if err != nil {
		return nil, nil, err
	}

	fetcher := fetch.NewRelayFetcher(cfg.Routes, cfg.FetchTimeout, cfg.MinBodyBytes)
	if cfg.BrowserFallback {
		fetcher.Browser = fetch.NewBrowserFetcher(2 * cfg.FetchTimeout)
	}

	catalog := service.NewCatalog(cfg.TargetURL, fetcher, katalog.NewEngine(cfg.Origin, depth, cfg.ExtractWorkers))
	closeFn := func() {}

	if cfg.CacheTTL > 0 {
		c, err := cache.New(cfg.CacheDBPath, cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize cache: %w", err)
		}
		slog.Info("cache initialized", "path", cfg.CacheDBPath, "ttl", cfg.CacheTTL)
		catalog.Cache = c
		closeFn = func() { c.Close() }
	}
	return catalog, closeFn, nil
}

// requestTimeout leaves room for every route plus the browser to time out.
func requestTimeout(cfg config.Config) time.Duration {
	return time.Duration(len(cfg.Routes)+2)*cfg.FetchTimeout + 5*time.Second
}

func newRouter(catalog api.EnvelopeSource, timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	// CORS wraps the router so error responses carry the headers too.
	r.Use(api.CORS)
	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/", docsHandler)
	r.Get("/healthz", api.Healthz)

	r.Get("/api/katalog", api.KatalogHandler(catalog))
	return r
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	catalog, closeFn, err := buildCatalog(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(catalog, requestTimeout(cfg)),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("listening", "addr", cfg.HTTPAddr, "catalog", "/api/katalog", "docs", "/", "target", cfg.TargetURL)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func docsHandler(w http.ResponseWriter, r *http.Request) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Katalog Hunter API"),
		),
	)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}
