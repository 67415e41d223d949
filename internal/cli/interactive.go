package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/transformer"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"tui"},
	Short:   "Pick a persona and chat with it in the terminal",
	RunE:    runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// tuiState tracks which phase the TUI is in.
type tuiState int

const (
	statePick tuiState = iota
	stateCompose
)

// maxTranscript bounds how many exchanges stay on screen.
const maxTranscript = 6

type exchange struct {
	res *transformer.Result
	err error
}

type transformedMsg exchange

// tuiModel is the Bubble Tea model for the interactive session.
type tuiModel struct {
	ctx        context.Context
	svc        *transformer.Service
	keys       []string
	personas   []persona.Info
	cursor     int
	state      tuiState
	input      textinput.Model
	transcript []exchange
	busy       bool
	width      int
	cancelled  bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	headerBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(accent).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(green).Bold(true)

	descStyle = lipgloss.NewStyle().Foreground(dim).PaddingLeft(4)

	youStyle = lipgloss.NewStyle().Foreground(dim)

	replyStyle = lipgloss.NewStyle().Foreground(green).PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(dim).MarginTop(1)
)

func newTUIModel(ctx context.Context, svc *transformer.Service) tuiModel {
	in := textinput.New()
	in.Placeholder = "Type a message and press enter..."
	in.Prompt = "> "
	in.CharLimit = 1000
	in.Width = 60

	return tuiModel{
		ctx:      ctx,
		svc:      svc,
		keys:     svc.Registry().Keys(),
		personas: svc.ListPersonas(),
		state:    statePick,
		input:    in,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tuiModel) current() persona.Info {
	return m.personas[m.cursor]
}

func (m tuiModel) transform(text string) tea.Cmd {
	key := m.keys[m.cursor]
	return func() tea.Msg {
		res, err := m.svc.Transform(m.ctx, text, key)
		return transformedMsg{res: res, err: err}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-6)
		return m, nil

	case transformedMsg:
		m.busy = false
		m.transcript = append(m.transcript, exchange(msg))
		if len(m.transcript) > maxTranscript {
			m.transcript = m.transcript[len(m.transcript)-maxTranscript:]
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		switch m.state {
		case statePick:
			return m.updatePick(msg)
		case stateCompose:
			return m.updateCompose(msg)
		}
	}

	if m.state == stateCompose {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m tuiModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.state = stateCompose
		return m, m.input.Focus()
	}
	return m, nil
}

func (m tuiModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = statePick
		m.input.Blur()
		return m, nil
	case "tab":
		m.cursor = (m.cursor + 1) % len(m.keys)
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy {
			return m, nil
		}
		m.busy = true
		m.input.Reset()
		return m, m.transform(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(headerBorder.Render(titleStyle.Render("PersonaSwap")))
	b.WriteString("\n")

	switch m.state {
	case statePick:
		for i, p := range m.personas {
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> ") + selectedStyle.Render(p.Name) + "\n")
				b.WriteString(descStyle.Render(p.Description) + "\n")
			} else {
				b.WriteString("  " + p.Name + "\n")
			}
		}
		b.WriteString(helpStyle.Render("  j/k or arrows to choose | enter to start | q to quit"))

	case stateCompose:
		b.WriteString(fmt.Sprintf("Speaking as %s\n\n", selectedStyle.Render(m.current().Name)))
		for _, ex := range m.transcript {
			if ex.err != nil {
				b.WriteString(errorStyle.Render("  Error: "+ex.err.Error()) + "\n\n")
				continue
			}
			b.WriteString(youStyle.Render("you: "+ex.res.Original) + "\n")
			b.WriteString(replyStyle.Render(ex.res.Persona+": "+ex.res.Transformed) + "\n\n")
		}
		b.WriteString(m.input.View() + "\n")
		if m.busy {
			b.WriteString(descStyle.Render("transforming...") + "\n")
		}
		b.WriteString(helpStyle.Render("  enter to transform | tab to switch persona | esc to go back | ctrl+c to quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(newTUIModel(cmd.Context(), a.svc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
