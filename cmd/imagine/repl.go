package main

import (
	"bytes"
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"imaginarium/internal/session"
)

// replModel is the interactive prompt: one input line under a scrollback of
// everything printed so far.
type replModel struct {
	ctx     context.Context
	session *session.Session
	input   textinput.Model

	scrollback []string
	width      int
	height     int
	quitting   bool
}

func newReplModel(ctx context.Context, s *session.Session) replModel {
	ti := textinput.New()
	ti.Placeholder = "a cat is a kind of animal. (Enter to run, ? to query facts, Ctrl+C to exit)"
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Focus()
	return replModel{ctx: ctx, session: s, input: ti}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if msg.Width > 4 {
			m.input.Width = msg.Width - 4
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.submit(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one input line and appends what it printed. Errors are shown
// and the prompt stays open.
func (m replModel) submit(line string) (tea.Model, tea.Cmd) {
	switch {
	case line == "":
		return m, nil
	case line == "quit" || line == "exit":
		m.quitting = true
		return m, tea.Quit
	}

	var out bytes.Buffer
	out.WriteString(promptStyle.Render("> ") + line + "\n")
	var err error
	if strings.HasPrefix(line, "?") {
		err = queryFacts(m.ctx, m.session, strings.TrimSpace(line[1:]), &out)
	} else {
		err = runText(m.ctx, m.session, line, &out)
	}
	if err != nil {
		renderError(&out, err)
	}
	m.scrollback = append(m.scrollback, strings.Split(strings.TrimRight(out.String(), "\n"), "\n")...)
	return m, nil
}

func (m replModel) View() string {
	if m.quitting {
		return ""
	}
	lines := m.scrollback
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[len(lines)-(m.height-2):]
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	return b.String()
}
