package telegram_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jdelaire/notebot/core"
	"github.com/jdelaire/notebot/core/keyboard"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram rejects edits that would leave a message unchanged. For us that
// is a successful edit.
const notModified = "message is not modified"

// APIError is a non-ok reply from the Bot API.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s error %d: %s", e.Method, e.StatusCode, e.Description)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type inlineMarkup struct {
	InlineKeyboard keyboard.Keyboard `json:"inline_keyboard"`
}

// markup returns the reply_markup value for kb. A nil keyboard removes the
// inline keyboard.
func markup(kb keyboard.Keyboard) inlineMarkup {
	if kb == nil {
		kb = keyboard.Keyboard{}
	}
	return inlineMarkup{InlineKeyboard: kb}
}

var _ core.Transport = (*Client)(nil)

// Client calls the Telegram Bot API on behalf of the dispatcher.
type Client struct {
	botToken string
	client   *http.Client
	baseURL  string

	mu sync.Mutex
	me *core.BotUser
}

// New creates a Bot API client for botToken.
func New(botToken string) *Client {
	return &Client{
		botToken: botToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
	}
}

// WithBaseURL sets a custom base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// SendText sends text to chatID and returns the new message id.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb keyboard.Keyboard, replyTo int64) (int64, error) {
	req := struct {
		ChatID           int64         `json:"chat_id"`
		Text             string        `json:"text"`
		ReplyToMessageID int64         `json:"reply_to_message_id,omitempty"`
		ReplyMarkup      *inlineMarkup `json:"reply_markup,omitempty"`
	}{ChatID: chatID, Text: text, ReplyToMessageID: replyTo}
	if kb != nil {
		m := markup(kb)
		req.ReplyMarkup = &m
	}

	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditText replaces the text and keyboard of a sent message.
func (c *Client) EditText(ctx context.Context, chatID, messageID int64, text string, kb keyboard.Keyboard) error {
	req := struct {
		ChatID      int64        `json:"chat_id"`
		MessageID   int64        `json:"message_id"`
		Text        string       `json:"text"`
		ReplyMarkup inlineMarkup `json:"reply_markup"`
	}{chatID, messageID, text, markup(kb)}
	return ignoreNotModified(c.call(ctx, "editMessageText", req, nil))
}

// EditMarkup replaces only the keyboard of a sent message.
func (c *Client) EditMarkup(ctx context.Context, chatID, messageID int64, kb keyboard.Keyboard) error {
	req := struct {
		ChatID      int64        `json:"chat_id"`
		MessageID   int64        `json:"message_id"`
		ReplyMarkup inlineMarkup `json:"reply_markup"`
	}{chatID, messageID, markup(kb)}
	return ignoreNotModified(c.call(ctx, "editMessageReplyMarkup", req, nil))
}

// DeleteMessage removes a message from the chat.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	req := struct {
		ChatID    int64 `json:"chat_id"`
		MessageID int64 `json:"message_id"`
	}{chatID, messageID}
	return c.call(ctx, "deleteMessage", req, nil)
}

// Me returns the bot's own account. The first successful answer is cached.
func (c *Client) Me(ctx context.Context) (core.BotUser, error) {
	c.mu.Lock()
	cached := c.me
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	var raw struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		Username  string `json:"username"`
	}
	if err := c.call(ctx, "getMe", struct{}{}, &raw); err != nil {
		return core.BotUser{}, err
	}
	me := core.BotUser{ID: raw.ID, FirstName: raw.FirstName, Username: raw.Username}

	c.mu.Lock()
	c.me = &me
	c.mu.Unlock()
	return me, nil
}

// Commands returns the command list currently published for the bot.
func (c *Client) Commands(ctx context.Context) ([]core.BotCommand, error) {
	var cmds []core.BotCommand
	if err := c.call(ctx, "getMyCommands", struct{}{}, &cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// SetCommands publishes cmds as the bot's command list.
func (c *Client) SetCommands(ctx context.Context, cmds []core.BotCommand) error {
	req := struct {
		Commands []core.BotCommand `json:"commands"`
	}{cmds}
	return c.call(ctx, "setMyCommands", req, nil)
}

func (c *Client) call(ctx context.Context, method string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)
	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: apiResp.Description}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", method, decodeErr)
	}

	if result == nil || len(apiResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(apiResp.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func ignoreNotModified(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, notModified) {
		return nil
	}
	return err
}
