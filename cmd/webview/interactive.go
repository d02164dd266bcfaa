package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/webview"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	scriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxLines = 200

// console is a terminal script console attached to a running webview.
type console struct {
	weak webview.Weak
	prog *tea.Program
	done chan struct{}
}

func newConsole(weak webview.Weak, url string) *console {
	c := &console{weak: weak, done: make(chan struct{})}
	c.prog = tea.NewProgram(newConsoleModel(c, url), tea.WithAltScreen())
	return c
}

// run blocks until the user leaves the console, then stops the event loop.
func (c *console) run() {
	defer close(c.done)
	if _, err := c.prog.Run(); err != nil {
		webview.Logger().Error("console failed", zap.Error(err))
	}
	c.weak.Terminate()
}

// quit closes the console after the event loop has stopped.
func (c *console) quit() {
	c.prog.Quit()
	<-c.done
}

// event shows a bound-function call in the log pane. Safe on a nil console.
func (c *console) event(name string, args any) {
	if c == nil {
		return
	}
	c.prog.Send(lineMsg{kind: lineEvent, text: fmt.Sprintf("%s(%v)", name, args)})
}

type lineKind int

const (
	lineScript lineKind = iota
	lineEvent
	lineError
)

type lineMsg struct {
	kind lineKind
	text string
}

type consoleModel struct {
	c      *console
	url    string
	input  textinput.Model
	lines  []lineMsg
	height int
}

func newConsoleModel(c *console, url string) *consoleModel {
	ti := textinput.New()
	ti.Placeholder = "document.title"
	ti.Prompt = "js> "
	ti.Width = 60
	ti.Focus()
	if url == "" {
		url = "about:blank"
	}
	return &consoleModel{c: c, url: url, input: ti, height: 24}
}

func (m *consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

// send queues js for evaluation on the event-loop thread.
func (m *consoleModel) send(js string) tea.Cmd {
	weak := m.c.weak
	return func() tea.Msg {
		err := weak.Dispatch(func(v *webview.Webview) {
			if err := v.Eval(js); err != nil {
				webview.Logger().Warn("console eval rejected", zap.Error(err))
			}
		})
		if err != nil {
			return lineMsg{kind: lineError, text: err.Error()}
		}
		return nil
	}
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			js := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if js == "" {
				return m, nil
			}
			m.append(lineMsg{kind: lineScript, text: js})
			return m, m.send(js)
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)

	case lineMsg:
		m.append(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *consoleModel) append(l lineMsg) {
	m.lines = append(m.lines, l)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("webview console"))
	b.WriteString(" ")
	b.WriteString(m.url)
	b.WriteString("\n\n")

	visible := max(m.height-6, 1)
	start := max(len(m.lines)-visible, 0)
	for _, l := range m.lines[start:] {
		switch l.kind {
		case lineScript:
			b.WriteString(scriptStyle.Render("> " + l.text))
		case lineEvent:
			b.WriteString(eventStyle.Render("← " + l.text))
		case lineError:
			b.WriteString(errorStyle.Render("! " + l.text))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter evaluate • esc quit"))
	return b.String()
}
