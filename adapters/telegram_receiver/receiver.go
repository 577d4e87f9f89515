package telegram_receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jdelaire/notebot/core"
)

const (
	defaultBaseURL  = "https://api.telegram.org"
	longPollTimeout = 30
	httpTimeout     = 35 * time.Second
	errorBackoff    = 5 * time.Second
)

// Only the update kinds the dispatcher understands are requested.
const allowedUpdates = `["message","callback_query"]`

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *message       `json:"message"`
	CallbackQuery *callbackQuery `json:"callback_query"`
}

type message struct {
	MessageID int64  `json:"message_id"`
	From      *user  `json:"from"`
	Chat      chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

type callbackQuery struct {
	ID      string   `json:"id"`
	From    user     `json:"from"`
	Message *message `json:"message"`
	Data    string   `json:"data"`
}

type user struct {
	ID int64 `json:"id"`
}

type chat struct {
	ID int64 `json:"id"`
}

// Receiver long-polls Telegram for messages and button presses.
type Receiver struct {
	botToken string
	handler  core.EventHandler
	logger   *slog.Logger
	client   *http.Client
	baseURL  string
	offset   int64
}

// New creates a Telegram receiver that passes every decoded update to handler.
func New(botToken string, handler core.EventHandler, logger *slog.Logger) *Receiver {
	return &Receiver{
		botToken: botToken,
		handler:  handler,
		logger:   logger,
		client:   &http.Client{Timeout: httpTimeout},
		baseURL:  defaultBaseURL,
	}
}

// WithBaseURL overrides the Telegram API base URL (for testing).
func (r *Receiver) WithBaseURL(url string) *Receiver {
	r.baseURL = url
	return r
}

// Start begins the long-poll loop. Blocks until ctx is cancelled.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.Info("telegram receiver started")
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info("telegram receiver stopped")
			return nil
		}

		updates, err := r.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("telegram receiver stopped")
				return nil
			}
			r.logger.Error("poll error", "error", err)
			select {
			case <-time.After(errorBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, u := range updates {
			if ev, ok := toEvent(u); ok {
				r.handler(ctx, ev)
			} else {
				r.logger.Debug("update skipped", "update_id", u.UpdateID)
			}
			r.offset = u.UpdateID + 1
		}
	}
}

// toEvent converts a raw update. Updates that are neither a text message nor
// a button press on one of our messages are skipped.
func toEvent(u update) (core.InboundEvent, bool) {
	switch {
	case u.Message != nil:
		if u.Message.Text == "" {
			return core.InboundEvent{}, false
		}
		var userID int64
		if u.Message.From != nil {
			userID = u.Message.From.ID
		}
		return core.NewMessageEvent(u.UpdateID, core.Message{
			SenderID:  userID,
			ChatID:    u.Message.Chat.ID,
			MessageID: u.Message.MessageID,
			Text:      u.Message.Text,
			SentAt:    time.Unix(u.Message.Date, 0).UTC(),
		}), true

	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.Message == nil {
			return core.InboundEvent{}, false
		}
		return core.NewCallbackEvent(u.UpdateID, core.Callback{
			ID:                q.ID,
			SenderID:          q.From.ID,
			ChatID:            q.Message.Chat.ID,
			Payload:           q.Data,
			OriginMessageID:   q.Message.MessageID,
			OriginMessageDate: time.Unix(q.Message.Date, 0).UTC(),
		}), true
	}
	return core.InboundEvent{}, false
}

func (r *Receiver) poll(ctx context.Context) ([]update, error) {
	u := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=%d&allowed_updates=%s",
		r.baseURL, r.botToken, r.offset, longPollTimeout, url.QueryEscape(allowedUpdates))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("api returned ok=false: %s", apiResp.Description)
	}

	var updates []update
	if err := json.Unmarshal(apiResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}

	return updates, nil
}
