package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdelaire/notebot/core/calendar"
	"github.com/jdelaire/notebot/core/keyboard"
	"github.com/jdelaire/notebot/core/note"
	"github.com/jdelaire/notebot/core/pager"
	"github.com/jdelaire/notebot/core/policy"
	"github.com/jdelaire/notebot/core/ratelimit"
	"github.com/jdelaire/notebot/core/session"
	"github.com/jdelaire/notebot/core/stats"
)

const (
	defaultWorkers = 8
	replyTimeout   = 10 * time.Second

	msgGenericError = "Something went wrong, please try again later."
	msgCooldown     = "Stop spamming!"
	msgInvalidSize  = "Invalid message size!"
	msgChooseDate   = "Please, choose date."
)

// Outcome summarizes what Handle did with an event.
type Outcome int

const (
	OutcomeHandled Outcome = iota
	OutcomeIgnored
	OutcomeMalformed
	OutcomeDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher routes inbound events to command and navigation handlers.
type Dispatcher struct {
	transport Transport
	notes     NoteStore
	sessions  *session.Store
	gate      *ratelimit.Gate
	policy    *policy.Policy
	logger    *slog.Logger
	now       func() time.Time

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(transport Transport, notes NoteStore, sessions *session.Store, gate *ratelimit.Gate, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		notes:     notes,
		sessions:  sessions,
		gate:      gate,
		policy:    policy.New(),
		logger:    logger,
		now:       time.Now,
		sem:       make(chan struct{}, defaultWorkers),
	}
}

// WithWorkers sets how many events may be handled at once.
func (d *Dispatcher) WithWorkers(n int) *Dispatcher {
	if n > 0 {
		d.sem = make(chan struct{}, n)
	}
	return d
}

// WithClock overrides the time source (for testing).
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	if now != nil {
		d.now = now
	}
	return d
}

// Submit handles ev on its own goroutine once a worker slot is free.
// It blocks while all slots are busy and gives up if ctx is cancelled.
func (d *Dispatcher) Submit(ctx context.Context, ev InboundEvent) {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() { <-d.sem }()
		d.Handle(ctx, ev)
	}()
}

// Wait blocks until every submitted event has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Handle processes one event: validate, route, execute, respond. Handler
// failures are logged and answered with a generic message; they never
// propagate to the caller.
func (d *Dispatcher) Handle(ctx context.Context, ev InboundEvent) (out Outcome) {
	logger := d.logger.With("trace_id", uuid.NewString(), "update_id", ev.UpdateID)

	if err := ev.Validate(); err != nil {
		logger.Debug("event rejected", "error", err)
		return OutcomeMalformed
	}
	userID, chatID := ev.Sender()
	if err := d.policy.Admit(ev.UpdateID, userID, chatID); err != nil {
		logger.Debug("event rejected by policy", "chat_id", chatID, "error", err)
		if errors.Is(err, policy.ErrDuplicate) {
			return OutcomeDuplicate
		}
		return OutcomeMalformed
	}

	logger = logger.With("user_id", userID, "chat_id", chatID)
	key := session.Key{UserID: userID, ChatID: chatID}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked", "panic", r)
			d.reportFailure(ctx, chatID, logger)
			out = OutcomeFailed
		}
	}()

	var err error
	out = OutcomeHandled
	switch ev.Kind {
	case KindMessage:
		err = d.handleMessage(ctx, logger, key, *ev.Message)
	case KindCallback:
		out, err = d.handleCallback(ctx, logger, key, *ev.Callback)
	}

	if err != nil {
		logger.Error("event handling failed", "error", err)
		d.reportFailure(ctx, chatID, logger)
		return OutcomeFailed
	}
	return out
}

func (d *Dispatcher) handleMessage(ctx context.Context, logger *slog.Logger, key session.Key, m Message) error {
	d.sessions.Get(key)

	cmd := ParseCommand(m.Text)
	logger.Info("message received", "command", cmd.String(), "message_id", m.MessageID)

	switch cmd {
	case CommandStart:
		return d.start(ctx, key.ChatID)
	case CommandHelp:
		return d.help(ctx, key.ChatID)
	case CommandStats:
		return d.showStats(ctx, key)
	case CommandNotes:
		return d.openCalendar(ctx, key)
	default:
		return d.capture(ctx, logger, key, m)
	}
}

func (d *Dispatcher) start(ctx context.Context, chatID int64) error {
	me, err := d.transport.Me(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	text := fmt.Sprintf("Hello, I'm a %s bot. You may write some notes and then handle them.", me.FirstName)
	return d.send(ctx, chatID, text, nil, 0)
}

func (d *Dispatcher) help(ctx context.Context, chatID int64) error {
	cmds, err := d.transport.Commands(ctx)
	if err != nil {
		return fmt.Errorf("get bot commands: %w", err)
	}

	var b strings.Builder
	b.WriteString("Some commands:\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "/%s : %s\n", strings.TrimPrefix(c.Command, "/"), c.Description)
	}
	return d.send(ctx, chatID, b.String(), nil, 0)
}

func (d *Dispatcher) showStats(ctx context.Context, key session.Key) error {
	summary, err := stats.Aggregate(ctx, d.notes, key.UserID, key.ChatID)
	if err != nil {
		return err
	}
	return d.send(ctx, key.ChatID, summary.Render(), nil, 0)
}

func (d *Dispatcher) openCalendar(ctx context.Context, key session.Key) error {
	month := note.MonthStart(d.now())
	st := d.sessions.Update(key, func(st session.State) session.State {
		st.Anchor = month
		return st
	})
	return d.send(ctx, key.ChatID, msgChooseDate, calendar.Render(st.Anchor), 0)
}

func (d *Dispatcher) capture(ctx context.Context, logger *slog.Logger, key session.Key, m Message) error {
	err := d.gate.Check(ctx, key.UserID, key.ChatID, m.Text, m.SentAt)
	switch {
	case errors.Is(err, ratelimit.ErrCooldown):
		logger.Info("note rejected", "reason", "cooldown")
		return d.send(ctx, key.ChatID, msgCooldown, nil, m.MessageID)
	case errors.Is(err, ratelimit.ErrInvalidSize):
		logger.Info("note rejected", "reason", "size")
		return d.send(ctx, key.ChatID, msgInvalidSize, nil, m.MessageID)
	case err != nil:
		return err
	}

	id, err := d.notes.Add(ctx, note.Note{
		UserID:    key.UserID,
		ChatID:    key.ChatID,
		MessageID: m.MessageID,
		Text:      m.Text,
		WrittenAt: m.SentAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("store note: %w", err)
	}
	logger.Info("note written", "note_id", id)

	return d.send(ctx, key.ChatID, "Note was written!\nYou wrote: "+m.Text, nil, m.MessageID)
}

func (d *Dispatcher) handleCallback(ctx context.Context, logger *slog.Logger, key session.Key, cb Callback) (Outcome, error) {
	route := ParseCallback(cb.Payload)
	if route.Action == ActionIgnore {
		return OutcomeIgnored, nil
	}
	logger.Info("callback received", "payload", cb.Payload, "message_id", cb.OriginMessageID)

	switch route.Action {
	case ActionNextMonth:
		return OutcomeHandled, d.shiftMonth(ctx, key, cb.OriginMessageID, 1)
	case ActionPreviousMonth:
		return OutcomeHandled, d.shiftMonth(ctx, key, cb.OriginMessageID, -1)
	case ActionNextNote:
		return OutcomeHandled, d.turnPage(ctx, key, cb.OriginMessageID, 1)
	case ActionPreviousNote:
		return OutcomeHandled, d.turnPage(ctx, key, cb.OriginMessageID, -1)
	case ActionSelectDate:
		d.sessions.Update(key, func(st session.State) session.State {
			st.NoteDate = route.Date
			st.NotePage = 1
			return st
		})
		if err := d.transport.DeleteMessage(ctx, key.ChatID, cb.OriginMessageID); err != nil {
			logger.Warn("failed to delete calendar", "message_id", cb.OriginMessageID, "error", err)
		}
		return OutcomeHandled, d.showNotes(ctx, key, route.Date, 1)
	default:
		st := d.sessions.Get(key)
		return OutcomeHandled, d.showNotes(ctx, key, st.BrowseDate(), 1)
	}
}

func (d *Dispatcher) shiftMonth(ctx context.Context, key session.Key, messageID int64, delta int) error {
	st := d.sessions.Update(key, func(st session.State) session.State {
		st.Anchor = st.Anchor.AddDate(0, delta, 0)
		return st
	})
	if err := d.transport.EditMarkup(ctx, key.ChatID, messageID, calendar.Render(st.Anchor)); err != nil {
		return fmt.Errorf("edit calendar: %w", err)
	}
	return nil
}

// turnPage moves the pager by delta and edits messageID in place. The page
// is advanced inside one session update so concurrent taps on the same key
// each count. A page outside the day's notes is rolled back silently.
func (d *Dispatcher) turnPage(ctx context.Context, key session.Key, messageID int64, delta int) error {
	var from, to int
	st := d.sessions.Update(key, func(st session.State) session.State {
		from = st.NotePage
		to = from + delta
		if to >= 1 {
			st.NotePage = to
		}
		return st
	})
	if to < 1 {
		return nil
	}

	day := note.Day(st.BrowseDate())
	view, err := pager.Lookup(ctx, d.notes, pager.Query{
		UserID: key.UserID,
		ChatID: key.ChatID,
		Day:    day,
		Page:   to,
	})
	if err != nil || !view.InRange {
		d.sessions.Update(key, func(st session.State) session.State {
			if st.NotePage == to {
				st.NotePage = from
			}
			return st
		})
		return err
	}

	if err := d.transport.EditText(ctx, key.ChatID, messageID, view.Text, view.Keyboard); err != nil {
		return fmt.Errorf("edit note page: %w", err)
	}
	return nil
}

// showNotes sends page of day as a new message and makes it the session's
// current page.
func (d *Dispatcher) showNotes(ctx context.Context, key session.Key, day time.Time, page int) error {
	day = note.Day(day)
	view, err := pager.Lookup(ctx, d.notes, pager.Query{
		UserID: key.UserID,
		ChatID: key.ChatID,
		Day:    day,
		Page:   page,
	})
	if err != nil {
		return err
	}
	if !view.InRange {
		return d.send(ctx, key.ChatID, pager.Empty(day), nil, 0)
	}

	d.sessions.Update(key, func(st session.State) session.State {
		st.NoteDate = day
		st.NotePage = page
		return st
	})
	return d.send(ctx, key.ChatID, view.Text, view.Keyboard, 0)
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, kb keyboard.Keyboard, replyTo int64) error {
	if _, err := d.transport.SendText(ctx, chatID, text, kb, replyTo); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// reportFailure tells the user something went wrong. It runs even when ctx
// has been cancelled.
func (d *Dispatcher) reportFailure(ctx context.Context, chatID int64, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()

	if _, err := d.transport.SendText(ctx, chatID, msgGenericError, nil, 0); err != nil {
		logger.Error("failed to send error reply", "error", err)
	}
}
