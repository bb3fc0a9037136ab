package models

import "time"

type Source string

const (
	SourceFresh    Source = "fresh_data"
	SourceFallback Source = "fallback_data"
)

// Envelope is the catalog response body.
type Envelope struct {
	Success   bool           `json:"success"`
	Products  []ProductOffer `json:"products"`
	Source    Source         `json:"source"`
	Timestamp int64          `json:"timestamp"`
	FetchedAt string         `json:"fetchedAt,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func NewFreshEnvelope(products []ProductOffer, now time.Time) Envelope {
	return Envelope{
		Success:   true,
		Products:  products,
		Source:    SourceFresh,
		Timestamp: now.UnixMilli(),
		FetchedAt: now.UTC().Format(time.RFC3339Nano),
	}
}

func NewFallbackEnvelope(products []ProductOffer, now time.Time, err error) Envelope {
	env := Envelope{
		Success:   true,
		Products:  products,
		Source:    SourceFallback,
		Timestamp: now.UnixMilli(),
	}
	if err != nil {
		env.Error = err.Error()
	}
	return env
}
