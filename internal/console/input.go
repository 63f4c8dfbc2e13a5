package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// noTerminal marks input that is not attached to a terminal.
const noTerminal = -1

// terminalFD returns the descriptor of r when it is an interactive terminal.
func terminalFD(r io.Reader) int {
	f, ok := r.(*os.File)
	if !ok {
		return noTerminal
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return noTerminal
	}
	return fd
}

// prompter reads answers from a line-oriented input.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// text prints prompt and reads one trimmed line. A final line without a
// newline is still returned; io.EOF is reported only when nothing was read.
func (p *prompter) text(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password reads without echo on a terminal and as a plain line otherwise.
// Surrounding whitespace is kept since it is part of the secret.
func (p *prompter) password(prompt string) (string, error) {
	if p.fd == noTerminal {
		if _, err := fmt.Fprint(p.out, prompt); err != nil {
			return "", err
		}
		line, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// number keeps asking until a positive integer is entered.
func (p *prompter) number(prompt string) (int, error) {
	for {
		answer, err := p.text(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintln(p.out, "Please enter a valid number!")
	}
}

// confirm treats anything starting with y as yes.
func (p *prompter) confirm(prompt string) (bool, error) {
	answer, err := p.text(prompt + " (y/N): ")
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}
