package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/driftbottle/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// bottleSelectedMsg is sent each time the selector picks a bottle to claim.
type bottleSelectedMsg struct {
	attempt   int
	candidate application.Candidate
}

type retrieveDoneMsg struct {
	err error
}

// retrieveSpinner shows which bottle is being claimed while a retrieve runs,
// and how many lost races it has re-selected after.
type retrieveSpinner struct {
	spinner  spinner.Model
	retries  int
	attempt  int
	selected *application.Candidate
	retrieve tea.Cmd
	err      error
	done     bool
}

func newRetrieveSpinner(retries int, retrieve tea.Cmd) retrieveSpinner {
	return retrieveSpinner{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("39"))),
		),
		retries:  retries,
		retrieve: retrieve,
	}
}

func (m retrieveSpinner) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.retrieve)
}

func (m retrieveSpinner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case bottleSelectedMsg:
		candidate := msg.candidate
		m.attempt = msg.attempt
		m.selected = &candidate
		return m, nil
	case retrieveDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m retrieveSpinner) View() string {
	if m.done {
		return ""
	}

	return m.spinner.View() + " " + m.status()
}

func (m retrieveSpinner) status() string {
	if m.selected == nil {
		return "Looking for a drifting bottle..."
	}

	claiming := fmt.Sprintf("Claiming bottle #%d from %s", m.selected.Bottle.ID, m.selected.Bottle.Sender.Short())
	if m.attempt == 0 {
		return claiming + "..."
	}

	return fmt.Sprintf("%s (taken by someone else, retry %d/%d)...", claiming, m.attempt, m.retries)
}

// runRetrieveSpinner runs retrieve under a spinner on output. retrieve
// reports every selected bottle through its onSelect argument.
func runRetrieveSpinner(ctx context.Context, output io.Writer, retries int, retrieve func(context.Context, func(int, application.Candidate)) error) error {
	var p *tea.Program

	onSelect := func(attempt int, candidate application.Candidate) {
		p.Send(bottleSelectedMsg{attempt: attempt, candidate: candidate})
	}
	retrieveCmd := func() tea.Msg {
		return retrieveDoneMsg{err: retrieve(ctx, onSelect)}
	}

	p = tea.NewProgram(
		newRetrieveSpinner(retries, retrieveCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(retrieveSpinner)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
