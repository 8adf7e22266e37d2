// Package oracle provides best-effort price snapshots from the quote provider.
package oracle

import (
	"context"

	"github.com/Priyanshu525/trading-alert/internal/models"
)

// Oracle supplies price snapshots for a set of instrument codes.
//
// The result is best-effort by contract: an instrument absent from the map
// means "unknown/unavailable" and callers must skip it. Upstream failure
// degrades to an empty map; it never propagates as an error, so the
// evaluation loop's skip/retry logic is plain branching on presence.
type Oracle interface {
	Quotes(ctx context.Context, instruments []string) map[string]models.Quote
}

// AccountDebugger exposes raw upstream account-call details for operator
// diagnostics.
type AccountDebugger interface {
	DebugAccount(ctx context.Context) AccountDebug
}

// AccountDebug is the verbatim outcome of an upstream account lookup.
type AccountDebug struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	Error  string `json:"error,omitempty"`
}
