// Package cli implements the krampus command-line interface.
//
// The CLI is built with cobra. Commands log through a charmbracelet/log
// logger carried on the command context and print user-facing status lines
// with lipgloss.
//
// # Commands
//
//   - draw: draw the assignment and notify every giver
//   - check: validate the input files and prove a draw is possible
//   - graph: render the exclusion graph as DOT or SVG
//   - config: show, locate or create the config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports the seed of every draw and each delivery attempt.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/krampus/pkg/observability"
)

// newLogger creates a logger writing to w at level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Drew 12 matches (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// registerHooks routes draw and delivery events to logger.
func registerHooks(logger *log.Logger) {
	observability.SetMatchHooks(matchLogHooks{logger})
	observability.SetDeliveryHooks(deliveryLogHooks{logger})
}

type matchLogHooks struct{ logger *log.Logger }

// OnRejected logs at powers of two so long searches stay readable.
func (h matchLogHooks) OnRejected(_ context.Context, n, attempt int) {
	if attempt&(attempt-1) == 0 {
		h.logger.Debug("draw rejected by exclusions", "participants", n, "draws", attempt)
	}
}

func (h matchLogHooks) OnMatched(_ context.Context, n, draws, shuffles int, d time.Duration) {
	h.logger.Debug("draw accepted", "participants", n, "draws", draws, "shuffles", shuffles, "duration", d)
}

func (h matchLogHooks) OnExhausted(_ context.Context, n, draws int) {
	h.logger.Warn("gave up drawing", "participants", n, "draws", draws)
}

type deliveryLogHooks struct{ logger *log.Logger }

func (h deliveryLogHooks) OnSent(_ context.Context, transport, to string, d time.Duration) {
	h.logger.Debug("message sent", "transport", transport, "to", to, "duration", d)
}

func (h deliveryLogHooks) OnError(_ context.Context, transport, to string, attempt int, err error) {
	h.logger.Warn("send failed", "transport", transport, "to", to, "attempt", attempt, "err", err)
}
