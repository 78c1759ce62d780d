// Package prompt asks the user to pick or type a value. On a terminal it runs
// small bubbletea programs; otherwise it reads answers line by line.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/Tiliavir/track/internal/trackerr"
)

// Prompter asks questions. Both methods return trackerr.ErrCancelled when the
// user aborts.
type Prompter interface {
	Select(title string, choices []string) (string, error)
	Text(title, def string) (string, error)
}

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Default returns the prompter for the process: the terminal UI when
// running interactively, the line reader otherwise.
func Default() Prompter {
	if Interactive() {
		return &Terminal{In: os.Stdin, Out: os.Stdout}
	}
	return NewLines(os.Stdin, os.Stderr)
}

// Terminal runs a bubbletea program per question.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t *Terminal) run(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithInput(t.In), tea.WithOutput(t.Out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

// Select shows choices as a list navigated with the arrow keys.
func (t *Terminal) Select(title string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("nothing to choose from")
	}
	final, err := t.run(NewSelect(title, choices))
	if err != nil {
		return "", err
	}
	choice, ok := final.(SelectModel).Choice()
	if !ok {
		return "", trackerr.ErrCancelled
	}
	return choice, nil
}

// Text reads one line of input, returning def when it is left empty.
func (t *Terminal) Text(title, def string) (string, error) {
	final, err := t.run(NewText(title, def))
	if err != nil {
		return "", err
	}
	value, ok := final.(TextModel).Value()
	if !ok {
		return "", trackerr.ErrCancelled
	}
	return value, nil
}

// Lines answers prompts from a line-oriented reader, for pipes and scripts.
type Lines struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLines reads answers from in and writes questions to out.
func NewLines(in io.Reader, out io.Writer) *Lines {
	return &Lines{in: bufio.NewReader(in), out: out}
}

func (l *Lines) readLine() (string, error) {
	line, err := l.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", trackerr.ErrCancelled
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Select lists the numbered choices and accepts a number or the exact text
// of a choice. Invalid answers are asked again until input runs out.
func (l *Lines) Select(title string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("nothing to choose from")
	}
	fmt.Fprintln(l.out, title)
	for i, c := range choices {
		fmt.Fprintf(l.out, "  %d) %s\n", i+1, c)
	}
	for {
		fmt.Fprint(l.out, "> ")
		answer, err := l.readLine()
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		for _, c := range choices {
			if c == answer {
				return c, nil
			}
		}
		fmt.Fprintf(l.out, "Please enter a number between 1 and %d.\n", len(choices))
	}
}

// Text asks for a value, returning def for an empty answer.
func (l *Lines) Text(title, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(l.out, "%s [%s]: ", title, def)
	} else {
		fmt.Fprintf(l.out, "%s: ", title)
	}
	answer, err := l.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
