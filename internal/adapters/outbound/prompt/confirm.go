// Package prompt asks the user to approve fixes on the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("prompt cancelled")

type decision int

const (
	undecided decision = iota
	approved
	declined
	cancelled
)

// confirmModel asks whether one fixer may apply its changes.
type confirmModel struct {
	fixer    string
	changes  []string
	question string
	decision decision
}

// newConfirmModel splits a fixer prompt into its header, the "  - " change
// lines and the closing question. A prompt without that shape is asked as
// it is.
func newConfirmModel(prompt string) confirmModel {
	lines := strings.Split(strings.TrimRight(prompt, "\n"), "\n")
	m := confirmModel{question: lines[len(lines)-1]}
	if len(lines) == 1 {
		return m
	}
	if name, ok := strings.CutSuffix(lines[0], " wants to make the following changes:"); ok {
		m.fixer = name
		lines = lines[1:]
	}
	for _, l := range lines[:len(lines)-1] {
		m.changes = append(m.changes, strings.TrimPrefix(strings.TrimSpace(l), "- "))
	}
	return m
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
		m.decision = approved
	case "n", "N", "enter":
		m.decision = declined
	case "ctrl+c", "q", "esc":
		m.decision = cancelled
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	name := m.fixer
	if name == "" {
		name = "fix"
	}
	switch m.decision {
	case approved:
		return fmt.Sprintf("%s: applying %s\n", name, countChanges(len(m.changes)))
	case declined:
		return fmt.Sprintf("%s: skipped\n", name)
	case cancelled:
		return ""
	}

	var b strings.Builder
	if m.fixer != "" {
		fmt.Fprintf(&b, "%s (%s)\n", m.fixer, countChanges(len(m.changes)))
	}
	for i, c := range m.changes {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, c)
	}
	fmt.Fprintf(&b, "%s [y/N] ", m.question)
	return b.String()
}

func countChanges(n int) string {
	if n == 1 {
		return "1 change"
	}
	return fmt.Sprintf("%d changes", n)
}

// Terminal implements domain.Confirmer with a bubbletea yes/no prompt.
// When input is not a terminal every prompt is declined.
type Terminal struct {
	in    *os.File
	out   io.Writer
	isTTY func() bool
}

// Option customizes a Terminal.
type Option func(*Terminal)

// WithTTYCheck replaces terminal detection.
func WithTTYCheck(fn func() bool) Option {
	return func(t *Terminal) { t.isTTY = fn }
}

func New(in *os.File, out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{in: in, out: out}
	t.isTTY = func() bool { return in != nil && term.IsTerminal(int(in.Fd())) }
	for _, o := range opts {
		o(t)
	}
	return t
}

// Confirm shows the fixer's numbered changes and waits for y or n. Enter
// declines.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !t.isTTY() {
		return false, nil
	}

	p := tea.NewProgram(newConfirmModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running prompt: %w", err)
	}
	switch final.(confirmModel).decision {
	case approved:
		return true, nil
	case cancelled:
		return false, ErrCancelled
	default:
		return false, nil
	}
}

// Static answers every prompt the same way.
type Static bool

func (s Static) Confirm(context.Context, string) (bool, error) { return bool(s), nil }
