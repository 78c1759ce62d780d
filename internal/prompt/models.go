package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent = "#7C3AED"
	colorText   = "#E6EAF2"
	colorMuted  = "#6D7383"
	colorHelp   = "240"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	choiceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorText))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorHelp))
)

// SelectModel is a single-choice list.
type SelectModel struct {
	title     string
	choices   []string
	cursor    int
	chosen    bool
	cancelled bool
}

// NewSelect returns a list with the cursor on the first choice.
func NewSelect(title string, choices []string) SelectModel {
	return SelectModel{title: title, choices: choices}
}

func (m SelectModel) Init() tea.Cmd { return nil }

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.choices) - 1
	case "enter":
		if len(m.choices) > 0 {
			m.chosen = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SelectModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + c))
		} else {
			b.WriteString(choiceStyle.Render("  " + c))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • enter select • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// Choice returns the selected value; ok is false when nothing was chosen.
func (m SelectModel) Choice() (string, bool) {
	if !m.chosen || m.cancelled {
		return "", false
	}
	return m.choices[m.cursor], true
}

// TextModel is a one-line text input with a default.
type TextModel struct {
	title     string
	def       string
	input     textinput.Model
	done      bool
	cancelled bool
}

// NewText returns a focused input showing def as placeholder.
func NewText(title, def string) TextModel {
	ti := textinput.New()
	ti.Placeholder = def
	ti.Prompt = "> "
	ti.PromptStyle = selectedStyle
	ti.TextStyle = choiceStyle
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	ti.Focus()
	return TextModel{title: title, def: def, input: ti}
}

func (m TextModel) Init() tea.Cmd { return textinput.Blink }

func (m TextModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TextModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return titleStyle.Render(m.title) + "\n\n" + m.input.View() + "\n\n" +
		helpStyle.Render("enter confirm • esc cancel") + "\n"
}

// Value returns the trimmed input or the default when empty; ok is false
// when the prompt was cancelled.
func (m TextModel) Value() (string, bool) {
	if !m.done || m.cancelled {
		return "", false
	}
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		return m.def, true
	}
	return v, true
}
