// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/Priyanshu525/trading-alert/internal/models"
)

// AlertStore defines the interface for alert persistence.
//
// Every operation is a single atomic unit safe for concurrent callers: the
// evaluation loop and the HTTP handlers share one store. MarkTriggered and
// Cancel are guarded on the current status so a read-then-write race between
// a trigger and a concurrent cancellation resolves to exactly one terminal
// state; the later writer is a silent no-op.
type AlertStore interface {
	// Create validates input and inserts a new active alert, returning its id.
	Create(ctx context.Context, symbol string, direction models.Direction, target float64, note string) (int64, error)

	// Get returns a single alert by id, or ErrAlertNotFound.
	Get(ctx context.Context, id int64) (*models.Alert, error)

	// ListActive returns all active alerts in a stable order.
	ListActive(ctx context.Context) ([]models.Alert, error)

	// ListHistory returns non-active alerts, most recent first, bounded.
	ListHistory(ctx context.Context, limit int) ([]models.Alert, error)

	// MarkTriggered transitions an alert to triggered only if it is still
	// active. Returns whether the transition actually occurred.
	MarkTriggered(ctx context.Context, id int64, price float64, when time.Time) (bool, error)

	// Cancel transitions an alert to cancelled only if it is still active.
	// Returns whether the transition actually occurred.
	Cancel(ctx context.Context, id int64) (bool, error)

	// Lifecycle
	Close() error
}
