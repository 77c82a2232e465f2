package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the user quits a prompt instead of answering it.
var ErrAborted = errors.New("import aborted at prompt")

type confirmModel struct {
	question string
	yes      bool
	answered bool
	aborted  bool
}

func newConfirmModel(question string) confirmModel {
	// default to No
	return confirmModel{question: question}
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
	case "ctrl+c", "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "left", "h":
		m.yes = true
	case "right", "l":
		m.yes = false
	case "y", "Y":
		m.yes, m.answered = true, true
		return m, tea.Quit
	case "n", "N":
		m.yes, m.answered = false, true
		return m, tea.Quit
	case "enter":
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	prompt := confirmPromptStyle.Render(m.question)
	if m.aborted {
		return prompt + " " + dimStyle.Render("aborted") + "\n"
	}
	if m.answered {
		answer := confirmNoStyle.Render("no")
		if m.yes {
			answer = confirmYesStyle.Render("yes")
		}
		return prompt + " " + answer + "\n"
	}

	yesBtn, noBtn := buttonStyle.Render("Yes"), noSelectedStyle.Render("No")
	if m.yes {
		yesBtn, noBtn = yesSelectedStyle.Render("Yes"), buttonStyle.Render("No")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesBtn, "  ", noBtn)
	help := helpStyle.Render("← → or y/n to select • Enter to confirm • q to abort")
	return lipgloss.JoinVertical(lipgloss.Left, prompt, buttons, help) + "\n"
}

// Prompter asks yes/no questions. On a terminal it runs a small bubbletea
// program; otherwise it reads one answer per line.
type Prompter struct {
	In       io.Reader
	Out      io.Writer
	Terminal bool

	once   sync.Once
	reader *bufio.Reader
}

// NewPrompter prompts on stdin and stderr.
func NewPrompter() *Prompter {
	return &Prompter{
		In:       os.Stdin,
		Out:      os.Stderr,
		Terminal: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd()),
	}
}

func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.Terminal {
		return p.confirmLine(question)
	}
	final, err := tea.NewProgram(newConfirmModel(question), tea.WithInput(p.In), tea.WithOutput(p.Out)).Run()
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.aborted {
		return false, ErrAborted
	}
	return m.yes, nil
}

func (p *Prompter) confirmLine(question string) (bool, error) {
	p.once.Do(func() {
		p.reader = bufio.NewReader(p.In)
	})
	fmt.Fprintf(p.Out, "%s [y/N]: ", question)
	answer, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		if err == io.EOF {
			return false, ErrAborted
		}
		return false, err
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
