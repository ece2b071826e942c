package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmPromptStyle = lipgloss.NewStyle().Bold(true)
	confirmHintStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// confirmModel is a y/N question. Anything but "y" declines.
type confirmModel struct {
	prompt   string
	answered bool
	yes      bool
}

func newConfirmModel(prompt string) confirmModel {
	return confirmModel{prompt: prompt}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.answered, m.yes = true, true
		return m, tea.Quit
	case "n", "N", "enter", "esc", "q", "ctrl+c":
		m.answered, m.yes = true, false
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	view := confirmPromptStyle.Render(m.prompt) + " " + confirmHintStyle.Render("[y/N]") + " "
	if m.answered {
		answer := "no"
		if m.yes {
			answer = "yes"
		}
		return view + answer + "\n"
	}
	return view
}

// confirm asks prompt on out and reads the answer from in.
func confirm(ctx context.Context, in io.Reader, out io.Writer, prompt string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out))

	final, err := p.Run()
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return false, err
	}
	m, ok := final.(confirmModel)
	return ok && m.yes, nil
}
