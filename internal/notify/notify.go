// Package notify provides notification delivery for triggered alerts.
package notify

import "context"

// Notifier delivers a text message to the configured recipient channel.
//
// Notify reports success; it never panics or returns an error. Delivery is
// at-most-once: transport failure and missing configuration are logged and
// reported as false, and nothing retries the attempt.
type Notifier interface {
	Notify(ctx context.Context, message string) bool
}

// NoopNotifier discards messages. Used when notifications are disabled and
// in tests.
type NoopNotifier struct{}

// NewNoopNotifier creates a new NoopNotifier.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Notify does nothing and reports success.
func (n *NoopNotifier) Notify(ctx context.Context, message string) bool {
	return true
}
