// Package ui holds the transient notice line shown at the bottom of the TUI.
package ui

import (
	"strings"
	"time"

	"github.com/vibe-audio/vibe/style"
	tea "github.com/charmbracelet/bubbletea"
)

// Lifetime is how long a notice stays on screen.
const Lifetime = 4 * time.Second

// Model holds the notice currently displayed, if any.
type Model struct {
	notice   string
	warning  bool
	shownAt  time.Time
	sequence int
}

// NoticeMsg displays text on the notice line.
type NoticeMsg struct {
	Text    string
	Warning bool
}

// ClearNoticeMsg clears the notice it was scheduled for.
type ClearNoticeMsg struct {
	sequence int
}

// Notify returns a command that shows text.
func Notify(text string, warning bool) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Text: text, Warning: warning}
	}
}

func clearAfter(sequence int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNoticeMsg{sequence: sequence}
	})
}

// Update handles notice messages. A later notice is never cleared by an earlier timer.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NoticeMsg:
		m.sequence++
		m.notice = msg.Text
		m.warning = msg.Warning
		m.shownAt = time.Now()
		return clearAfter(m.sequence)
	case ClearNoticeMsg:
		if msg.sequence == m.sequence {
			m.notice = ""
		}
	}
	return nil
}

// Current returns the visible notice text.
func (m *Model) Current() string {
	return m.notice
}

// View appends the notice to the last line of content.
func (m *Model) View(content string) string {
	if m.notice == "" {
		return content
	}

	render := style.Faint
	if m.warning {
		render = style.Fg(style.WarningColor)
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] = lines[len(lines)-1] + "  " + render(m.notice)
	return strings.Join(lines, "\n")
}
