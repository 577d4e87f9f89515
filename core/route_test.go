package core

import (
	"testing"
	"time"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"/start", CommandStart},
		{"/help", CommandHelp},
		{"/stats", CommandStats},
		{"/notes", CommandNotes},
		{"/NOTES", CommandNotes},
		{"/help@notes_bot", CommandHelp},
		{"  /stats extra words", CommandStats},
		{"/unknown", CommandCapture},
		{"start", CommandCapture},
		{"buy milk /start", CommandCapture},
		{"", CommandCapture},
		{"   ", CommandCapture},
		{"/", CommandCapture},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.input); got != tt.want {
			t.Errorf("ParseCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		input string
		want  Action
	}{
		{"empty", ActionIgnore},
		{"", ActionIgnore},
		{" Empty ", ActionIgnore},
		{"next", ActionNextMonth},
		{"NEXT", ActionNextMonth},
		{"previous", ActionPreviousMonth},
		{"nextnote", ActionNextNote},
		{"PreviousNote", ActionPreviousNote},
		{"2023-03-14", ActionSelectDate},
		{"2023-13-45", ActionBrowse},
		{"14.03.2023", ActionBrowse},
		{"garbage", ActionBrowse},
	}
	for _, tt := range tests {
		if got := ParseCallback(tt.input).Action; got != tt.want {
			t.Errorf("ParseCallback(%q).Action = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseCallbackDate(t *testing.T) {
	r := ParseCallback("2024-02-29")
	want := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	if r.Action != ActionSelectDate || !r.Date.Equal(want) {
		t.Errorf("ParseCallback = %+v, want select %v", r, want)
	}
}

func TestDefaultCommandsMatchParser(t *testing.T) {
	for _, c := range DefaultCommands() {
		if ParseCommand("/"+c.Command) == CommandCapture {
			t.Errorf("published command %q is not routed", c.Command)
		}
		if c.Description == "" {
			t.Errorf("command %q has no description", c.Command)
		}
	}
}
