package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("39")).
	Padding(1, 0, 0, 2)

type keywordModel struct {
	title     string
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newKeywordModel(title string) keywordModel {
	ti := textinput.New()
	ti.Placeholder = "например, аналитик"
	ti.CharLimit = 100
	ti.Focus()
	return keywordModel{title: title, input: ti}
}

func (m keywordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m keywordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m keywordModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return promptStyle.Render(m.title) + "\n  Введите слово: " + m.input.View() + "\n"
}

// RunKeywordPrompt asks for a search keyword. ok is false when the user
// backed out.
func RunKeywordPrompt(title string) (keyword string, ok bool, err error) {
	p := tea.NewProgram(newKeywordModel(title))
	result, err := p.Run()
	if err != nil {
		return "", false, err
	}
	final := result.(keywordModel)
	if !final.submitted {
		return "", false, nil
	}
	return strings.TrimSpace(final.input.Value()), true, nil
}
