package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"katalog-hunter/pkg/logger"
	"katalog-hunter/pkg/models"
)

// EnvelopeSource is satisfied by service.Catalog.
type EnvelopeSource interface {
	Get(ctx context.Context) models.Envelope
}

// KatalogHandler serves the catalog envelope. It always answers 200: failures
// are reported inside the envelope.
func KatalogHandler(src EnvelopeSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env := src.Get(r.Context())
		logger.Dedup("Catalog served: %s (%d products)", env.Source, len(env.Products))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(env); err != nil {
			slog.Error("encoding catalog response", "err", err)
			WriteInternalServerError(w, fmt.Errorf("failed to encode response"), r.URL.Path)
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
