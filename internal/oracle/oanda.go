package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/Priyanshu525/trading-alert/internal/errors"
	"github.com/Priyanshu525/trading-alert/internal/logging"
	"github.com/Priyanshu525/trading-alert/internal/models"
)

// OandaOracle implements Oracle against the OANDA v3 REST API.
type OandaOracle struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger

	// accountID is resolved once per process lifetime and reused. A race to
	// initialize it twice is harmless: both writers store the same value.
	mu        sync.Mutex
	accountID string
}

// OandaConfig holds configuration for the OANDA oracle.
type OandaConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewOandaOracle creates a new OANDA-backed price oracle.
func NewOandaOracle(cfg OandaConfig, logger zerolog.Logger) *OandaOracle {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}

	return &OandaOracle{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "oracle").Logger(),
	}
}

// SetAccountID pins the cached account identifier. Tests use it to skip the
// upstream account lookup.
func (o *OandaOracle) SetAccountID(id string) {
	o.mu.Lock()
	o.accountID = id
	o.mu.Unlock()
}

type accountsResponse struct {
	Accounts []struct {
		ID string `json:"id"`
	} `json:"accounts"`
}

type pricingResponse struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Bids       []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"prices"`
}

// accountIDCached resolves the provider account id, caching it for the
// lifetime of the process. Re-resolution only happens after a restart.
func (o *OandaOracle) accountIDCached(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.accountID != "" {
		return o.accountID, nil
	}
	if o.token == "" {
		return "", fmt.Errorf("quote-provider token: %w", apperrors.ErrNotConfigured)
	}

	var parsed accountsResponse
	if err := o.getJSON(ctx, o.baseURL+"/v3/accounts", &parsed); err != nil {
		return "", err
	}
	if len(parsed.Accounts) == 0 {
		return "", apperrors.ErrNoAccount
	}

	o.accountID = parsed.Accounts[0].ID
	o.logger.Debug().Str("account_id", o.accountID).Msg("Resolved provider account")
	return o.accountID, nil
}

func (o *OandaOracle) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.token)

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		uerr := apperrors.NewUpstreamError("oanda", 0, "", err)
		logging.LogAPICall(o.logger, http.MethodGet, req.URL.Path, time.Since(start), uerr)
		return uerr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		uerr := apperrors.NewUpstreamError("oanda", resp.StatusCode, string(body), nil)
		logging.LogAPICall(o.logger, http.MethodGet, req.URL.Path, time.Since(start), uerr)
		return uerr
	}

	logging.LogAPICall(o.logger, http.MethodGet, req.URL.Path, time.Since(start), nil)
	return json.NewDecoder(resp.Body).Decode(target)
}

// Quotes fetches a best-effort snapshot for the given instruments in a
// single batched pricing call. Any failure degrades to an empty result.
func (o *OandaOracle) Quotes(ctx context.Context, instruments []string) map[string]models.Quote {
	out := make(map[string]models.Quote)
	if len(instruments) == 0 {
		return out
	}

	accountID, err := o.accountIDCached(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Account resolution failed, skipping cycle quotes")
		return out
	}

	endpoint := fmt.Sprintf("%s/v3/accounts/%s/pricing?instruments=%s",
		o.baseURL, accountID, url.QueryEscape(strings.Join(instruments, ",")))

	var parsed pricingResponse
	if err := o.getJSON(ctx, endpoint, &parsed); err != nil {
		o.logger.Warn().Err(err).Msg("Pricing fetch failed")
		return out
	}

	for _, p := range parsed.Prices {
		var bid, ask *float64
		if len(p.Bids) > 0 {
			if v, err := strconv.ParseFloat(p.Bids[0].Price, 64); err == nil {
				bid = &v
			}
		}
		if len(p.Asks) > 0 {
			if v, err := strconv.ParseFloat(p.Asks[0].Price, 64); err == nil {
				ask = &v
			}
		}
		out[p.Instrument] = models.NewQuote(p.Instrument, bid, ask)
	}

	return out
}

// DebugAccount surfaces the raw outcome of the upstream account call for
// operator debugging.
func (o *OandaOracle) DebugAccount(ctx context.Context) AccountDebug {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/v3/accounts", nil)
	if err != nil {
		return AccountDebug{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+o.token)

	resp, err := o.client.Do(req)
	if err != nil {
		return AccountDebug{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	return AccountDebug{
		OK:     resp.StatusCode == http.StatusOK,
		Status: resp.StatusCode,
		Body:   string(body),
	}
}
