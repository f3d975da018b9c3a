package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when a manual login is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("session: stdin is not a terminal")

// LineConfirmer prints a prompt and waits for one line of input.
type LineConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// TerminalConfirmer confirms on the process's stdin and stdout.
func TerminalConfirmer() *LineConfirmer {
	return &LineConfirmer{In: os.Stdin, Out: os.Stdout}
}

// Confirm returns once a line is read, or with ctx.Err() on cancellation.
// The reading goroutine stays blocked on In until the process exits, which
// is what an interrupted run does next.
func (c *LineConfirmer) Confirm(ctx context.Context, prompt string) error {
	if f, ok := c.In.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return ErrNotInteractive
	}
	if _, err := fmt.Fprintf(c.Out, "\n%s\n> ", prompt); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(c.In).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
