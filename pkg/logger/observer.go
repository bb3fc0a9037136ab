package logger

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Observer receives extraction and retrieval decisions. Implementations must be
// safe for concurrent use since candidates are extracted in parallel.
type Observer interface {
	// ReportDebug records a routine decision (candidate skipped, package found).
	ReportDebug(id string, params ...any)
	// ReportWarning records a degraded path that still produced a result.
	ReportWarning(id string, params ...any)
	// ReportBroken records a failure that should be looked at.
	ReportBroken(id string, params ...any)
	// ReportCount records a point-in-time count.
	ReportCount(id string, n int64)
}

// SlogObserver writes observations to the default slog logger.
type SlogObserver struct{}

func formatParams(id string, params []any) []any {
	out := make([]any, 0, 2+2*len(params))
	out = append(out, "id", id)
	for i, p := range params {
		out = append(out, fmt.Sprintf("params.%d", i), p)
	}
	return out
}

func (SlogObserver) ReportDebug(id string, params ...any) {
	slog.Debug("decision", formatParams(id, params)...)
}

func (SlogObserver) ReportWarning(id string, params ...any) {
	slog.Warn("warning", formatParams(id, params)...)
}

func (SlogObserver) ReportBroken(id string, params ...any) {
	slog.Error("broken component", formatParams(id, params)...)
}

func (SlogObserver) ReportCount(id string, n int64) {
	slog.Info("count", "id", id, "n", n)
}

type scoped struct {
	namespace string
	inner     Observer
}

// Scoped prefixes every event id with namespace.
func Scoped(namespace string, inner Observer) Observer {
	return scoped{namespace: namespace, inner: inner}
}

func (s scoped) ReportDebug(id string, params ...any) {
	s.inner.ReportDebug(s.namespace+":"+id, params...)
}

func (s scoped) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.namespace+":"+id, params...)
}

func (s scoped) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.namespace+":"+id, params...)
}

func (s scoped) ReportCount(id string, n int64) {
	s.inner.ReportCount(s.namespace+":"+id, n)
}

type Level string

const (
	LevelDebug   Level = "debug"
	LevelWarning Level = "warning"
	LevelBroken  Level = "broken"
	LevelCount   Level = "count"
)

type Event struct {
	Level  Level
	ID     string
	Params []any
}

// Recorder keeps every observation in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) ReportDebug(id string, params ...any) {
	r.add(Event{Level: LevelDebug, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Event{Level: LevelWarning, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Event{Level: LevelBroken, ID: id, Params: params})
}

func (r *Recorder) ReportCount(id string, n int64) {
	r.add(Event{Level: LevelCount, ID: id, Params: []any{n}})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Find returns the events recorded under id.
func (r *Recorder) Find(id string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.ID == id {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Has(id string) bool {
	return len(r.Find(id)) > 0
}
