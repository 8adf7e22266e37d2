package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Priyanshu525/trading-alert/internal/errors"
)

func newTestOracle(t *testing.T, handler http.Handler) (*OandaOracle, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o := NewOandaOracle(OandaConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
	}, zerolog.Nop())
	return o, srv
}

func TestQuotesBatchAndPartialResults(t *testing.T) {
	var accountCalls, pricingCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		accountCalls.Add(1)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"accounts":[{"id":"001-001-1234567-001"}]}`)
	})
	mux.HandleFunc("/v3/accounts/001-001-1234567-001/pricing", func(w http.ResponseWriter, r *http.Request) {
		pricingCalls.Add(1)
		assert.Equal(t, "EUR_USD,GBP_USD,XAU_USD", r.URL.Query().Get("instruments"))
		// GBP_USD missing, XAU_USD one-sided
		fmt.Fprint(w, `{"prices":[
			{"instrument":"EUR_USD","bids":[{"price":"1.1000"}],"asks":[{"price":"1.1002"}]},
			{"instrument":"XAU_USD","bids":[{"price":"2000.10"}],"asks":[]}
		]}`)
	})

	o, _ := newTestOracle(t, mux)

	quotes := o.Quotes(context.Background(), []string{"EUR_USD", "GBP_USD", "XAU_USD"})

	require.Len(t, quotes, 2)

	eur := quotes["EUR_USD"]
	require.NotNil(t, eur.Mid)
	assert.InDelta(t, 1.1001, *eur.Mid, 1e-9)

	// One-sided quote falls back to the available side
	xau := quotes["XAU_USD"]
	require.NotNil(t, xau.Mid)
	assert.Equal(t, 2000.10, *xau.Mid)
	assert.Nil(t, xau.Ask)

	// Absent instrument means unavailable, not zero
	_, ok := quotes["GBP_USD"]
	assert.False(t, ok)

	assert.Equal(t, int64(1), accountCalls.Load())
	assert.Equal(t, int64(1), pricingCalls.Load())
}

func TestAccountIDCachedAcrossCalls(t *testing.T) {
	var accountCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		accountCalls.Add(1)
		fmt.Fprint(w, `{"accounts":[{"id":"acct-1"}]}`)
	})
	mux.HandleFunc("/v3/accounts/acct-1/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[]}`)
	})

	o, _ := newTestOracle(t, mux)

	for i := 0; i < 5; i++ {
		o.Quotes(context.Background(), []string{"EUR_USD"})
	}

	assert.Equal(t, int64(1), accountCalls.Load())
}

func TestUpstreamFailureDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accounts":[{"id":"acct-1"}]}`)
	})
	mux.HandleFunc("/v3/accounts/acct-1/pricing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	o, _ := newTestOracle(t, mux)

	quotes := o.Quotes(context.Background(), []string{"EUR_USD"})
	assert.Empty(t, quotes)
}

func TestAccountResolutionFailureDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	o, _ := newTestOracle(t, mux)

	quotes := o.Quotes(context.Background(), []string{"EUR_USD"})
	assert.Empty(t, quotes)
}

func TestMissingTokenDegradesToEmpty(t *testing.T) {
	o := NewOandaOracle(OandaConfig{BaseURL: "http://127.0.0.1:0", Token: ""}, zerolog.Nop())

	quotes := o.Quotes(context.Background(), []string{"EUR_USD"})
	assert.Empty(t, quotes)
}

func TestEmptyInstrumentSetSkipsUpstream(t *testing.T) {
	var calls atomic.Int64
	o, _ := newTestOracle(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	quotes := o.Quotes(context.Background(), nil)
	assert.Empty(t, quotes)
	assert.Equal(t, int64(0), calls.Load())
}

func TestSetAccountIDInjection(t *testing.T) {
	var accountCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		accountCalls.Add(1)
	})
	mux.HandleFunc("/v3/accounts/injected/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[{"instrument":"EUR_USD","bids":[{"price":"1.1"}],"asks":[{"price":"1.1"}]}]}`)
	})

	o, _ := newTestOracle(t, mux)
	o.SetAccountID("injected")

	quotes := o.Quotes(context.Background(), []string{"EUR_USD"})
	assert.Len(t, quotes, 1)
	assert.Equal(t, int64(0), accountCalls.Load())
}

func TestUpstreamFailureCarriesProviderDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pricing offline", http.StatusServiceUnavailable)
	})

	o, srv := newTestOracle(t, mux)

	var parsed accountsResponse
	err := o.getJSON(context.Background(), srv.URL+"/v3/accounts", &parsed)

	var uerr *apperrors.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "oanda", uerr.Provider)
	assert.Equal(t, http.StatusServiceUnavailable, uerr.Status)
	assert.Contains(t, uerr.Body, "pricing offline")
}

func TestTransportFailureCarriesProviderDetail(t *testing.T) {
	o := NewOandaOracle(OandaConfig{BaseURL: "http://127.0.0.1:1", Token: "tok"}, zerolog.Nop())

	var parsed accountsResponse
	err := o.getJSON(context.Background(), o.baseURL+"/v3/accounts", &parsed)

	var uerr *apperrors.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "oanda", uerr.Provider)
	assert.Zero(t, uerr.Status)
	assert.Error(t, uerr.Unwrap())
}

func TestMissingTokenIsNotConfigured(t *testing.T) {
	o := NewOandaOracle(OandaConfig{BaseURL: "http://127.0.0.1:1", Token: ""}, zerolog.Nop())

	_, err := o.accountIDCached(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
}

func TestEmptyAccountListIsNoAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accounts":[]}`)
	})

	o, _ := newTestOracle(t, mux)

	_, err := o.accountIDCached(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoAccount)
}

func TestDebugAccountSurfacesRawResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errorMessage":"Insufficient authorization"}`)
	})

	o, _ := newTestOracle(t, mux)

	dbg := o.DebugAccount(context.Background())
	assert.False(t, dbg.OK)
	assert.Equal(t, http.StatusUnauthorized, dbg.Status)
	assert.Contains(t, dbg.Body, "Insufficient authorization")
}
