package tinybasic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/expression"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/scanner"
)

const (
	DefaultInputPrompt   = " ? "
	DefaultCheckInterval = 1000
)

// TinyBASIC is one interpreter session: a stored program, the variables
// and the RUN engine. A session is driven by a single goroutine.
type TinyBASIC struct {
	program *Program
	env     *expression.Environment
	state   RunState

	in  LineReader
	out io.Writer

	sessionID       string
	inputPrompt     string
	inputRetryLimit int
	checkInterval   int
}

// NewTinyBASIC creates a session that reads INPUT answers from in and
// writes all output to out.
func NewTinyBASIC(in LineReader, out io.Writer) *TinyBASIC {
	b := &TinyBASIC{
		program:         NewProgram(),
		env:             expression.NewEnvironment(),
		state:           StateReady,
		in:              in,
		out:             out,
		inputPrompt:     configuration.GetString("Interpreter", "input_prompt", DefaultInputPrompt),
		inputRetryLimit: configuration.GetInt("Interpreter", "input_retry_limit", 0),
		checkInterval:   configuration.GetInt("Interpreter", "check_interval", DefaultCheckInterval),
	}
	if b.checkInterval < 1 {
		b.checkInterval = 1
	}
	if b.inputRetryLimit < 0 {
		b.inputRetryLimit = 0
	}
	return b
}

// SetSessionID names the session in log entries.
func (b *TinyBASIC) SetSessionID(sessionID string) { b.sessionID = sessionID }

// Program returns the stored program.
func (b *TinyBASIC) Program() *Program { return b.program }

// Environment returns the session's variables.
func (b *TinyBASIC) Environment() *expression.Environment { return b.env }

// State reports the RUN engine state. Outside of RUN it is always Ready.
func (b *TinyBASIC) State() RunState { return b.state }

// ProcessLine classifies one line of input and acts on it. Errors are
// returned as they are; Execute is the variant that reports them.
func (b *TinyBASIC) ProcessLine(ctx context.Context, line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	sc := scanner.New(line)
	first := sc.NextToken()

	switch first.Type {
	case scanner.TokenNumber:
		return b.editLine(sc, first, strings.TrimSpace(line))
	case scanner.TokenWord:
		// handled below
	default:
		return syntaxError(fmt.Sprintf("unexpected %q", first.Text))
	}

	switch first.Text {
	case "LET", "PRINT", "INPUT":
		stmt, err := parseStatement(sc, first.Text)
		if err != nil {
			return err
		}
		_, err = b.execute(ctx, stmt)
		return err
	}

	if sc.HasMoreTokens() {
		return syntaxError(fmt.Sprintf("%s takes no arguments", first.Text))
	}
	switch first.Text {
	case "RUN":
		return b.cmdRun(ctx)
	case "LIST":
		return b.cmdList()
	case "CLEAR":
		b.cmdClear()
		return nil
	case "QUIT":
		return ErrQuit
	case "HELP":
		return b.cmdHelp()
	}
	return syntaxError(fmt.Sprintf("unknown command %q", first.Text))
}

// editLine stores, replaces or removes a numbered line.
func (b *TinyBASIC) editLine(sc *scanner.Scanner, first scanner.Token, text string) error {
	n, err := parseLineNumber(first.Text)
	if err != nil {
		return err
	}
	if !sc.HasMoreTokens() {
		if !b.program.RemoveSourceLine(n) {
			logger.Debug(logger.AreaProgram, "session %s: line %d not present, nothing removed", b.sessionID, n)
		}
		return nil
	}
	return b.program.AddSourceLine(n, text)
}

// Execute runs ProcessLine and reports any BASIC error on the output. Only
// ErrQuit and failures of the input source are returned; after either the
// caller should stop feeding lines.
func (b *TinyBASIC) Execute(ctx context.Context, line string) error {
	err := b.ProcessLine(ctx, line)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrQuit) {
		logger.Info(logger.AreaSession, "session %s: QUIT", b.sessionID)
		return err
	}

	var be *BASICError
	if !errors.As(err, &be) {
		logger.Warn(logger.AreaSession, "session %s: input source failed: %v", b.sessionID, err)
		return err
	}
	logger.Debug(logger.AreaSession, "session %s: %s", b.sessionID, be.LogString())
	fmt.Fprintln(b.out, be.Error())
	return nil
}
