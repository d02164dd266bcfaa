package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/webview"
	"github.com/wippyai/webview/native/nativetest"
)

func typeText(m *consoleModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestConsole_EvalDispatchesToLoop(t *testing.T) {
	eng := nativetest.New()
	w, err := webview.New(eng)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	m := newConsoleModel(&console{weak: w.Downgrade()}, "")
	typeText(m, "1 + 1")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("unexpected message %v", msg)
	}

	eng.Drain(w.Handle())
	st, _ := eng.State(w.Handle())
	if len(st.Evals) != 1 || st.Evals[0] != "1 + 1" {
		t.Errorf("evals = %v", st.Evals)
	}
	if len(m.lines) != 1 || m.lines[0].kind != lineScript {
		t.Errorf("lines = %+v", m.lines)
	}
	if m.input.Value() != "" {
		t.Errorf("input not reset: %q", m.input.Value())
	}
}

func TestConsole_ExpiredWebview(t *testing.T) {
	m := newConsoleModel(&console{}, "about:blank")
	typeText(m, "x")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(lineMsg)
	if !ok || msg.kind != lineError {
		t.Fatalf("expected error line, got %v", msg)
	}
	m.Update(msg)
	if !strings.Contains(m.View(), "handle_expired") {
		t.Error("error not shown")
	}
}

func TestConsole_LineLimit(t *testing.T) {
	m := newConsoleModel(&console{}, "")
	for i := 0; i < maxLines+10; i++ {
		m.Update(lineMsg{kind: lineEvent, text: "e"})
	}
	if len(m.lines) != maxLines {
		t.Errorf("lines = %d, want %d", len(m.lines), maxLines)
	}

	// Empty input does nothing.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("empty input produced a command")
	}
}

func TestConsole_NilEvent(t *testing.T) {
	var c *console
	c.event("echo", []any{1})
}
