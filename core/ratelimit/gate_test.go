package ratelimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type lastNote struct {
	at  time.Time
	ok  bool
	err error
}

func (l *lastNote) MostRecent(_ context.Context, _, _ int64) (time.Time, bool, error) {
	return l.at, l.ok, l.err
}

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestCheckAllowsFirstNote(t *testing.T) {
	g := New(&lastNote{}, 0)
	if err := g.Check(context.Background(), 1, 2, "hello", base); err != nil {
		t.Errorf("Check(first note) = %v, want nil", err)
	}
}

func TestCheckCooldownBoundary(t *testing.T) {
	src := &lastNote{at: base, ok: true}
	g := New(src, 5*time.Minute)

	err := g.Check(context.Background(), 1, 2, "hi", base.Add(4*time.Minute+59*time.Second))
	if !errors.Is(err, ErrCooldown) {
		t.Errorf("Check(T+4m59s) = %v, want ErrCooldown", err)
	}

	if err := g.Check(context.Background(), 1, 2, "hi", base.Add(5*time.Minute+time.Second)); err != nil {
		t.Errorf("Check(T+5m01s) = %v, want nil", err)
	}
}

func TestCheckCooldownBeforeSize(t *testing.T) {
	g := New(&lastNote{at: base, ok: true}, 0)
	err := g.Check(context.Background(), 1, 2, "", base.Add(time.Minute))
	if !errors.Is(err, ErrCooldown) {
		t.Errorf("Check = %v, want ErrCooldown to win over size", err)
	}
}

func TestCheckSize(t *testing.T) {
	g := New(&lastNote{}, 0)
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrInvalidSize},
		{"one char", "a", nil},
		{"3999 chars", strings.Repeat("a", 3999), nil},
		{"4000 chars", strings.Repeat("a", 4000), ErrInvalidSize},
		{"3999 runes multi-byte", strings.Repeat("ж", 3999), nil},
	}
	for _, tt := range tests {
		err := g.Check(context.Background(), 1, 2, tt.text, base)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: Check = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestCheckStoreError(t *testing.T) {
	boom := errors.New("db locked")
	g := New(&lastNote{err: boom}, 0)
	err := g.Check(context.Background(), 1, 2, "hi", base)
	if !errors.Is(err, boom) {
		t.Errorf("Check = %v, want wrapped store error", err)
	}
}

func TestDefaultCooldown(t *testing.T) {
	if got := New(&lastNote{}, -time.Second).Cooldown(); got != DefaultCooldown {
		t.Errorf("Cooldown() = %v, want %v", got, DefaultCooldown)
	}
}
