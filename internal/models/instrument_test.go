package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInstrument(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"EURUSD", "EUR_USD"},
		{"eurusd", "EUR_USD"},
		{" GBPJPY ", "GBP_JPY"},
		{"XAUUSD", "XAU_USD"},
		{"XAGUSD", "XAG_USD"},
		{"EUR_USD", "EUR_USD"},
		{"xau_usd", "XAU_USD"},
		{"AUDNZD", "AUD_NZD"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveInstrument(tt.symbol), "symbol %q", tt.symbol)
	}
}

func TestResolveInstrumentDeterministic(t *testing.T) {
	// Resolution must be stable so alerts created before a restart still
	// hit the same quote key.
	for _, sym := range DefaultSymbols {
		first := ResolveInstrument(sym)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, ResolveInstrument(sym))
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, valid := range []string{"above", "below", "touch"} {
		d, err := ParseDirection(valid)
		require.NoError(t, err)
		assert.Equal(t, Direction(valid), d)
	}

	for _, invalid := range []string{"", "ABOVE", "under", "cross"} {
		_, err := ParseDirection(invalid)
		assert.Error(t, err, "direction %q", invalid)
	}
}

func TestValidTarget(t *testing.T) {
	assert.True(t, ValidTarget(1.1))
	assert.True(t, ValidTarget(0))
	assert.True(t, ValidTarget(-5))
	assert.False(t, ValidTarget(math.NaN()))
	assert.False(t, ValidTarget(math.Inf(1)))
	assert.False(t, ValidTarget(math.Inf(-1)))
}

func TestNewQuoteMidDerivation(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	q := NewQuote("EUR_USD", f(1.1000), f(1.1002))
	require.NotNil(t, q.Mid)
	assert.InDelta(t, 1.1001, *q.Mid, 1e-9)

	q = NewQuote("EUR_USD", f(1.1000), nil)
	require.NotNil(t, q.Mid)
	assert.Equal(t, 1.1000, *q.Mid)

	q = NewQuote("EUR_USD", nil, f(1.1002))
	require.NotNil(t, q.Mid)
	assert.Equal(t, 1.1002, *q.Mid)

	q = NewQuote("EUR_USD", nil, nil)
	assert.Nil(t, q.Mid)
}
