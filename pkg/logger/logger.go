package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Init installs a tint handler as the default slog logger.
func Init(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
}

var dedup = &deduplicator{
	flushDelay: 2 * time.Second,
	emit: func(msg string) {
		slog.Info(msg)
	},
}

type deduplicator struct {
	mu         sync.Mutex
	lastMsg    string
	count      int
	flushDelay time.Duration
	timer      *time.Timer
	emit       func(string)
}

func (d *deduplicator) flush() {
	if d.count == 0 {
		return
	}
	if d.count == 1 {
		d.emit(d.lastMsg)
	} else {
		d.emit(fmt.Sprintf("%s (%d)", d.lastMsg, d.count))
	}
	d.count = 0
	d.lastMsg = ""
}

func (d *deduplicator) schedule() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.flushDelay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.flush()
	})
}

func (d *deduplicator) log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if msg == d.lastMsg {
		d.count++
		d.schedule()
		return
	}

	d.flush()
	d.lastMsg = msg
	d.count = 1
	d.schedule()
}

// Dedup logs at info level, folding identical consecutive lines into one "msg (n)" line.
func Dedup(format string, args ...any) {
	dedup.log(fmt.Sprintf(format, args...))
}
