// Package engine implements the alert evaluation loop.
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Priyanshu525/trading-alert/internal/config"
	"github.com/Priyanshu525/trading-alert/internal/logging"
	"github.com/Priyanshu525/trading-alert/internal/models"
	"github.com/Priyanshu525/trading-alert/internal/notify"
	"github.com/Priyanshu525/trading-alert/internal/oracle"
	"github.com/Priyanshu525/trading-alert/internal/store"
	"github.com/Priyanshu525/trading-alert/pkg/utils"
)

// Engine drives the active -> triggered transition with at-most-one
// notification per trigger.
//
// Each cycle reads active alerts, batches one quote lookup across their
// distinct instruments, evaluates trigger predicates and performs the
// guarded store transition. The notification is sent only when the
// transition actually occurred, so a duplicate evaluation pass or a
// concurrent user cancellation can never produce a second message.
type Engine struct {
	store    store.AlertStore
	oracle   oracle.Oracle
	notifier notify.Notifier
	interval time.Duration
	touch    config.TouchConfig
	logger   zerolog.Logger
	clock    func() time.Time

	started atomic.Bool
}

// New creates a new evaluation engine.
func New(s store.AlertStore, o oracle.Oracle, n notify.Notifier, cfg config.EngineConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    s,
		oracle:   o,
		notifier: n,
		interval: cfg.PollInterval(),
		touch:    cfg.Touch,
		logger:   logger.With().Str("component", "engine").Logger(),
		clock:    time.Now,
	}
}

// SetClock overrides the engine's time source for tests.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

// Started reports whether the evaluation loop has begun running.
func (e *Engine) Started() bool {
	return e.started.Load()
}

// Run executes evaluation cycles until ctx is cancelled. Per-cycle errors
// are contained: one failing cycle never terminates the loop, which always
// proceeds to sleep and retry. Cancellation is observed between cycles so a
// cycle in flight finishes its work.
func (e *Engine) Run(ctx context.Context) {
	e.started.Store(true)
	e.logger.Info().Dur("interval", e.interval).Msg("Evaluation loop started")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.RunCycle(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("Evaluation cycle failed, retrying next interval")
		}

		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Evaluation loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunCycle performs a single evaluation pass over all active alerts.
func (e *Engine) RunCycle(ctx context.Context) error {
	alerts, err := e.store.ListActive(ctx)
	if err != nil {
		// Storage errors after startup are transient; the cycle retries
		// after the poll interval.
		return fmt.Errorf("listing active alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	quotes := e.oracle.Quotes(ctx, distinctInstruments(alerts))

	for i := range alerts {
		e.evaluate(ctx, &alerts[i], quotes)
	}

	return nil
}

// distinctInstruments deduplicates instrument codes across alerts so each
// cycle costs one pricing call regardless of alert count.
func distinctInstruments(alerts []models.Alert) []string {
	seen := make(map[string]struct{}, len(alerts))
	for _, a := range alerts {
		seen[a.Instrument] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for inst := range seen {
		out = append(out, inst)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) evaluate(ctx context.Context, alert *models.Alert, quotes map[string]models.Quote) {
	quote, ok := quotes[alert.Instrument]
	if !ok || quote.Mid == nil {
		// Transient unavailability is expected; the alert stays active and
		// is re-evaluated next cycle.
		return
	}
	last := *quote.Mid

	if !e.shouldTrigger(alert, last) {
		return
	}

	now := e.clock().UTC()
	transitioned, err := e.store.MarkTriggered(ctx, alert.ID, last, now)
	if err != nil {
		e.logger.Warn().Err(err).Int64("alert_id", alert.ID).Msg("Trigger transition failed")
		return
	}
	if !transitioned {
		// A concurrent cancel or an earlier pass won the write. Losing
		// silently here is the whole idempotence mechanism.
		e.logger.Debug().Int64("alert_id", alert.ID).Msg("Trigger lost to concurrent transition")
		return
	}

	logging.LogAlertTriggered(e.logger, alert.ID, alert.Symbol, string(alert.Direction), alert.Target, last)

	msg := e.composeMessage(alert, last, now)
	if !e.notifier.Notify(ctx, msg) {
		// Delivery is best-effort; the alert stays triggered either way.
		e.logger.Warn().Int64("alert_id", alert.ID).Msg("Notification not delivered")
	}
}

// shouldTrigger evaluates the trigger predicate for the alert's direction.
func (e *Engine) shouldTrigger(alert *models.Alert, last float64) bool {
	switch alert.Direction {
	case models.DirectionAbove:
		return last >= alert.Target
	case models.DirectionBelow:
		return last <= alert.Target
	case models.DirectionTouch:
		return math.Abs(last-alert.Target) <= e.touch.ToleranceFor(alert.Instrument)
	}
	return false
}

func (e *Engine) composeMessage(alert *models.Alert, price float64, when time.Time) string {
	var sb strings.Builder
	sb.WriteString("ALERT\n")
	sb.WriteString(fmt.Sprintf("%s %s %s\n", alert.Symbol, strings.ToUpper(string(alert.Direction)), utils.FormatPrice(alert.Target)))
	sb.WriteString(fmt.Sprintf("Price: %s\n", utils.FormatPrice(price)))
	sb.WriteString(fmt.Sprintf("Time: %s", when.Format(time.RFC3339)))
	if note := strings.TrimSpace(alert.Note); note != "" {
		sb.WriteString(fmt.Sprintf("\nNote: %s", note))
	}
	return sb.String()
}
