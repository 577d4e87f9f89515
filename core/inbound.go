package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jdelaire/notebot/core/policy"
)

// ErrMalformedEvent is returned for events that cannot be routed.
var ErrMalformedEvent = policy.ErrMalformed

// EventKind tells which variant of an InboundEvent is populated.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindMessage
	KindCallback
)

// InboundEvent is a single update received from Telegram. Exactly one of
// Message or Callback is set.
type InboundEvent struct {
	UpdateID int64
	Kind     EventKind
	Message  *Message
	Callback *Callback
}

// Message is a text message sent to the bot.
type Message struct {
	SenderID  int64
	ChatID    int64
	MessageID int64
	Text      string
	SentAt    time.Time
}

// Callback is an inline button press.
type Callback struct {
	ID                string
	SenderID          int64
	ChatID            int64
	Payload           string
	OriginMessageID   int64
	OriginMessageDate time.Time
}

// NewMessageEvent wraps m in an InboundEvent.
func NewMessageEvent(updateID int64, m Message) InboundEvent {
	return InboundEvent{UpdateID: updateID, Kind: KindMessage, Message: &m}
}

// NewCallbackEvent wraps c in an InboundEvent.
func NewCallbackEvent(updateID int64, c Callback) InboundEvent {
	return InboundEvent{UpdateID: updateID, Kind: KindCallback, Callback: &c}
}

// Sender returns the user and chat the event belongs to, whichever variant is set.
func (e InboundEvent) Sender() (userID, chatID int64) {
	switch e.Kind {
	case KindMessage:
		if e.Message != nil {
			return e.Message.SenderID, e.Message.ChatID
		}
	case KindCallback:
		if e.Callback != nil {
			return e.Callback.SenderID, e.Callback.ChatID
		}
	}
	return 0, 0
}

// Validate checks that exactly one variant is set and matches Kind.
func (e InboundEvent) Validate() error {
	switch {
	case e.Message != nil && e.Callback != nil:
		return fmt.Errorf("%w: both message and callback set", ErrMalformedEvent)
	case e.Kind == KindMessage && e.Message == nil:
		return fmt.Errorf("%w: message event without message", ErrMalformedEvent)
	case e.Kind == KindCallback && e.Callback == nil:
		return fmt.Errorf("%w: callback event without callback", ErrMalformedEvent)
	case e.Kind != KindMessage && e.Kind != KindCallback:
		return fmt.Errorf("%w: unknown event kind %d", ErrMalformedEvent, e.Kind)
	}
	return nil
}

// EventHandler processes an inbound event.
type EventHandler func(ctx context.Context, ev InboundEvent)
