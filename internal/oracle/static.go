package oracle

import (
	"context"
	"sync"

	"github.com/Priyanshu525/trading-alert/internal/models"
)

// StaticOracle serves quotes from an in-memory table. Used in tests and as a
// stand-in when no provider is configured.
type StaticOracle struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

// NewStaticOracle creates a StaticOracle with the given quotes.
func NewStaticOracle(quotes map[string]models.Quote) *StaticOracle {
	if quotes == nil {
		quotes = make(map[string]models.Quote)
	}
	return &StaticOracle{quotes: quotes}
}

// SetQuote sets or replaces the quote for an instrument.
func (s *StaticOracle) SetQuote(q models.Quote) {
	s.mu.Lock()
	s.quotes[q.Instrument] = q
	s.mu.Unlock()
}

// RemoveQuote deletes the quote for an instrument.
func (s *StaticOracle) RemoveQuote(instrument string) {
	s.mu.Lock()
	delete(s.quotes, instrument)
	s.mu.Unlock()
}

// Quotes returns the stored quotes for the requested instruments.
func (s *StaticOracle) Quotes(ctx context.Context, instruments []string) map[string]models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Quote, len(instruments))
	for _, inst := range instruments {
		if q, ok := s.quotes[inst]; ok {
			out[inst] = q
		}
	}
	return out
}
