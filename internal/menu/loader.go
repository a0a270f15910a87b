package menu

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/hhvacancies/internal/report"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// queryTimeout bounds a single report query.
const queryTimeout = 30 * time.Second

type queryDoneMsg struct {
	result report.Result
	err    error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	ctx     context.Context
	title   string
	queryFn func(ctx context.Context) (report.Result, error)
	frame   int
	result  report.Result
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doQuery(), m.tick())
}

func (m loaderModel) doQuery() tea.Cmd {
	parent, queryFn := m.ctx, m.queryFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, queryTimeout)
		defer cancel()
		res, err := queryFn(ctx)
		return queryDoneMsg{result: res, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case queryDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s %s...\n", spinner, m.title)
}

// RunLoader shows a spinner while the query runs. It renders inline (no alt screen).
func RunLoader(ctx context.Context, title string, queryFn func(ctx context.Context) (report.Result, error)) (report.Result, error) {
	p := tea.NewProgram(loaderModel{ctx: ctx, title: title, queryFn: queryFn})
	result, err := p.Run()
	if err != nil {
		return report.Result{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
