package tinybasic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antibyte/retrobasic/pkg/expression"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// LineReader supplies lines of user input. ReadLine shows prompt, blocks
// until a line is available and returns it without the line terminator.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// cmdPrint writes the value of an expression on its own line.
func (b *TinyBASIC) cmdPrint(s *Print) error {
	v, err := b.eval(s.Value)
	if err != nil {
		return err
	}
	fmt.Fprintln(b.out, v)
	return nil
}

// cmdInput reads an integer into a variable. Text that is not an integer
// literal is answered with INVALID NUMBER and asked for again; with a retry
// limit configured, running out of retries fails the statement.
func (b *TinyBASIC) cmdInput(ctx context.Context, s *Input) error {
	for attempt := 1; ; attempt++ {
		text, err := b.in.ReadLine(ctx, b.inputPrompt)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return NewBASICError(ErrCategoryBreak, "INPUT "+s.Var, NoLine).WithCause(err)
			}
			return fmt.Errorf("INPUT %s: %w", s.Var, err)
		}
		if n, err := expression.ParseInteger(strings.TrimSpace(text)); err == nil {
			b.env.Set(s.Var, n)
			return nil
		}

		logger.Debug(logger.AreaRun, "session %s: rejected INPUT %q (attempt %d)", b.sessionID, text, attempt)
		if b.inputRetryLimit > 0 && attempt >= b.inputRetryLimit {
			return NewBASICError(ErrCategoryInput, fmt.Sprintf("INPUT %s: %d invalid answers", s.Var, attempt), NoLine)
		}
		fmt.Fprintln(b.out, ErrInvalidNumber.Error())
	}
}
