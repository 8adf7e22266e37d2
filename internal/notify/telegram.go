package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Priyanshu525/trading-alert/internal/config"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages to a single preconfigured chat via the
// Telegram bot API.
type TelegramNotifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		apiBase:  telegramAPIBase,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: 6 * time.Second},
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

// SetAPIBase overrides the Telegram API base address. Tests use it to target
// a local httptest server.
func (t *TelegramNotifier) SetAPIBase(base string) {
	t.apiBase = base
}

// Notify posts the message to the configured chat. Missing configuration or
// any transport failure logs and reports false; there is no retry.
func (t *TelegramNotifier) Notify(ctx context.Context, message string) bool {
	if t.botToken == "" || t.chatID == "" {
		t.logger.Warn().Msg("Telegram not configured, dropping notification")
		return false
	}

	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error().Err(err).Msg("Marshaling telegram payload failed")
		return false
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		t.logger.Error().Err(err).Msg("Creating telegram request failed")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Sending telegram message failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.logger.Warn().Int("status", resp.StatusCode).Msg("Telegram API returned non-OK status")
		return false
	}

	return true
}
