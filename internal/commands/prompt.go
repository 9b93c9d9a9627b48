package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"taskpro/internal/viewmodel"
)

// prompter reads answers from the command's input. Questions go to errOut
// so stdout stays clean for scripting.
type prompter struct {
	in     io.Reader
	r      *bufio.Reader
	errOut io.Writer
}

func newPrompter(in io.Reader, errOut io.Writer) *prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	return &prompter{in: in, r: bufio.NewReader(in), errOut: errOut}
}

// line prints question and reads one line, without the trailing newline.
// EOF with no input is an error.
func (p *prompter) line(question string) (string, error) {
	if question != "" {
		fmt.Fprint(p.errOut, question)
	}
	s, err := p.r.ReadString('\n')
	if errors.Is(err, io.EOF) && s != "" {
		err = nil
	}
	if errors.Is(err, io.EOF) {
		return "", errors.New("no input")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// password reads a password without echo when the input is a terminal.
func (p *prompter) password(question string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.errOut, question)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.errOut)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return p.line(question)
}

// confirm returns a ConfirmFunc that asks a yes/no question.
// Anything other than y or yes declines.
func (p *prompter) confirm() viewmodel.ConfirmFunc {
	return func(prompt string) bool {
		answer, err := p.line(prompt + " [y/N] ")
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
