package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/tinybasic"
)

// Console reads lines from the local terminal. On a TTY it uses line
// editing with history; otherwise it reads the input stream as is.
type Console struct {
	state       *liner.State
	out         io.Writer
	historyFile string

	// Without line editing a goroutine reads the stream so that ReadLine
	// can give up on a cancelled context.
	reader      *bufio.Reader
	lines       chan readResult
	startReader sync.Once
}

type readResult struct {
	line string
	err  error
}

// NewConsole opens the console on the process's standard streams.
func NewConsole() *Console {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		c := &Console{
			state:       liner.NewLiner(),
			out:         os.Stdout,
			historyFile: configuration.GetString("Interpreter", "history_file", ""),
		}
		c.state.SetCtrlCAborts(true)
		c.loadHistory()
		return c
	}
	return NewStreamConsole(os.Stdin, os.Stdout)
}

// NewStreamConsole reads lines from r without line editing. Prompts are
// written to out.
func NewStreamConsole(r io.Reader, out io.Writer) *Console {
	return &Console{reader: bufio.NewReader(r), out: out, lines: make(chan readResult)}
}

// Interactive reports whether line editing is active.
func (c *Console) Interactive() bool {
	return c.state != nil
}

// Out is where session output goes.
func (c *Console) Out() io.Writer {
	return c.out
}

func (c *Console) loadHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := c.state.ReadHistory(f); err != nil {
		logger.TerminalWarn("Reading history %s: %v", c.historyFile, err)
	}
}

// Close restores the terminal and saves the history.
func (c *Console) Close() error {
	if c.state == nil {
		return nil
	}
	if c.historyFile != "" {
		if f, err := os.Create(c.historyFile); err == nil {
			c.state.WriteHistory(f)
			f.Close()
		} else {
			logger.TerminalWarn("Writing history %s: %v", c.historyFile, err)
		}
	}
	return c.state.Close()
}

// ReadLine shows prompt and returns the next line. Ctrl-C at the prompt
// is reported as context.Canceled, end of input as io.EOF.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if c.state != nil {
		line, err := c.state.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", fmt.Errorf("prompt aborted: %w", context.Canceled)
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			c.state.AppendHistory(line)
		}
		return line, nil
	}

	if prompt != "" {
		io.WriteString(c.out, prompt)
	}
	c.startReader.Do(func() { go c.readStream() })
	select {
	case r, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readStream hands the stream's lines to ReadLine until the first error.
// A line read after ReadLine gave up waits for the next call.
func (c *Console) readStream() {
	defer close(c.lines)
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			c.lines <- readResult{err: err}
			return
		}
		c.lines <- readResult{line: strings.TrimRight(line, "\r\n")}
	}
}

// RunScript executes every line of r in b. INPUT statements still read
// from the session's own reader.
func RunScript(ctx context.Context, b *tinybasic.TinyBASIC, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := b.Execute(ctx, sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Run feeds console lines to b until end of input or QUIT. Ctrl-C while a
// line executes interrupts it with BREAK.
func (c *Console) Run(ctx context.Context, b *tinybasic.TinyBASIC) error {
	for {
		line, err := c.ReadLine(ctx, "")
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			continue
		}
		if err != nil {
			return endOfSession(err)
		}

		lineCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err = b.Execute(lineCtx, line)
		stop()
		if err != nil {
			return endOfSession(err)
		}
	}
}

// endOfSession maps the ways a console session ends normally to nil.
func endOfSession(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, tinybasic.ErrQuit) {
		return nil
	}
	return err
}
