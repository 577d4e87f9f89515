package core

import (
	"context"

	"github.com/jdelaire/notebot/core/keyboard"
)

// BotUser describes the bot account itself.
type BotUser struct {
	ID        int64
	FirstName string
	Username  string
}

// BotCommand is a command registered with Telegram, without the leading slash.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Transport delivers outbound messages and answers metadata queries.
// A nil keyboard means no inline markup; replyTo 0 means not a reply.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, kb keyboard.Keyboard, replyTo int64) (int64, error)
	EditText(ctx context.Context, chatID, messageID int64, text string, kb keyboard.Keyboard) error
	EditMarkup(ctx context.Context, chatID, messageID int64, kb keyboard.Keyboard) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	Me(ctx context.Context) (BotUser, error)
	Commands(ctx context.Context) ([]BotCommand, error)
}
