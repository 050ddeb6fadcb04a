package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type requestDoneMsg struct {
	err error
}

type requestSpinnerModel struct {
	spinner spinner.Model
	label   string
	fetch   tea.Cmd
	started time.Time
	now     func() time.Time
	err     error
	done    bool
}

func newRequestSpinnerModel(label string, fetch tea.Cmd, now func() time.Time) requestSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return requestSpinnerModel{
		spinner: s,
		label:   label,
		fetch:   fetch,
		started: now(),
		now:     now,
	}
}

func (m requestSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m requestSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case requestDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m requestSpinnerModel) View() string {
	if m.done {
		return ""
	}

	elapsed := m.now().Sub(m.started).Round(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, elapsedStyle.Render(elapsed.String()))
}

var elapsedStyle = lipgloss.NewStyle().Faint(true)

// runRequestSpinner shows label and the time spent so far on output while
// fetch runs, then returns fetch's error.
func runRequestSpinner(ctx context.Context, output io.Writer, label string, now func() time.Time, fetch func(context.Context) error) error {
	fetchCmd := func() tea.Msg {
		return requestDoneMsg{err: fetch(ctx)}
	}

	p := tea.NewProgram(
		newRequestSpinnerModel(label, fetchCmd, now),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(requestSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
