package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelRendersOutcome(t *testing.T) {
	m := model{title: "migrate up"}
	if view := m.View(); !strings.Contains(view, "running") {
		t.Fatalf("expected running view, got %q", view)
	}

	next, cmd := m.Update(actionMsg{details: []string{"users: up to date"}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	view := next.View()
	if !strings.Contains(view, "OK") || !strings.Contains(view, "- users: up to date") {
		t.Fatalf("unexpected view %q", view)
	}

	failed, _ := m.Update(actionMsg{err: errors.New("db down")})
	if view := failed.View(); !strings.Contains(view, "FAILED") || !strings.Contains(view, "db down") {
		t.Fatalf("unexpected view %q", view)
	}
}

func TestModelCtrlCCancels(t *testing.T) {
	next, _ := model{title: "seed apply"}.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if res := next.(model); !errors.Is(res.err, context.Canceled) || !res.done {
		t.Fatalf("expected cancellation, got %+v", res)
	}
}

func TestTickAdvancesSpinnerUntilDone(t *testing.T) {
	next, cmd := model{}.Update(tickMsg{})
	if next.(model).frame != 1 || cmd == nil {
		t.Fatal("expected spinner to advance")
	}
	_, cmd = model{done: true}.Update(tickMsg{})
	if cmd != nil {
		t.Fatal("expected no tick after completion")
	}
}
