package core

import (
	"strings"
	"time"

	"github.com/jdelaire/notebot/core/keyboard"
)

// Command is the action selected by a text message.
type Command int

const (
	// CommandCapture stores the whole message as a note. Any text that is
	// not a known command lands here; it is the normal path, not an error.
	CommandCapture Command = iota
	CommandStart
	CommandHelp
	CommandStats
	CommandNotes
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandHelp:
		return "help"
	case CommandStats:
		return "stats"
	case CommandNotes:
		return "notes"
	default:
		return "capture"
	}
}

var commandNames = map[string]Command{
	"start": CommandStart,
	"help":  CommandHelp,
	"stats": CommandStats,
	"notes": CommandNotes,
}

// DefaultCommands lists the commands published to Telegram.
func DefaultCommands() []BotCommand {
	return []BotCommand{
		{Command: "start", Description: "Display bot's description."},
		{Command: "help", Description: "Display bot's commands."},
		{Command: "stats", Description: "Display count of notes, which you wrote to bot."},
		{Command: "notes", Description: "Display notes, which you wrote to bot (by date)."},
	}
}

// ParseCommand classifies a message by its first word.
// It handles "/command", "/command args", and "/command@botname args".
func ParseCommand(text string) Command {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return CommandCapture
	}
	word := fields[0]
	if !strings.HasPrefix(word, "/") {
		return CommandCapture
	}
	word = word[1:]

	// Strip @botname suffix.
	if at := strings.Index(word, "@"); at != -1 {
		word = word[:at]
	}

	if cmd, ok := commandNames[word]; ok {
		return cmd
	}
	return CommandCapture
}

// Action is the navigation step selected by a callback payload.
type Action int

const (
	// ActionBrowse shows page 1 of the stored note date. Payloads that are
	// neither a keyword nor a date land here.
	ActionBrowse Action = iota
	ActionIgnore
	ActionNextMonth
	ActionPreviousMonth
	ActionNextNote
	ActionPreviousNote
	ActionSelectDate
)

// Route is a classified callback. Date is set for ActionSelectDate only.
type Route struct {
	Action Action
	Date   time.Time
}

// ParseCallback classifies a button payload.
func ParseCallback(payload string) Route {
	p := strings.ToLower(strings.TrimSpace(payload))
	switch p {
	case "", keyboard.PayloadEmpty:
		return Route{Action: ActionIgnore}
	case keyboard.PayloadNext:
		return Route{Action: ActionNextMonth}
	case keyboard.PayloadPrevious:
		return Route{Action: ActionPreviousMonth}
	case keyboard.PayloadNextNote:
		return Route{Action: ActionNextNote}
	case keyboard.PayloadPreviousNote:
		return Route{Action: ActionPreviousNote}
	}
	if d, err := time.Parse(keyboard.DateLayout, p); err == nil {
		return Route{Action: ActionSelectDate, Date: d}
	}
	return Route{Action: ActionBrowse}
}
