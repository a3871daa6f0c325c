package tinybasic

import (
	"context"
	"fmt"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// RunState is the state of the RUN engine.
type RunState int

const (
	StateReady RunState = iota
	StateRunning
	StateEnded
)

func (s RunState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateEnded:
		return "ENDED"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// runContext lives for exactly one RUN.
type runContext struct {
	ended      bool
	pending    int
	hasPending bool
}

// stepResult is what executing one statement asks of the engine.
type stepResult struct {
	ended  bool
	jump   bool
	target int
}

func (rc *runContext) apply(res stepResult) {
	if res.ended {
		rc.ended = true
	}
	if res.jump {
		rc.pending = res.target
		rc.hasPending = true
	}
}

// takeBranch returns the pending branch target and clears it.
func (rc *runContext) takeBranch() (int, bool) {
	if !rc.hasPending {
		return 0, false
	}
	target := rc.pending
	rc.pending = 0
	rc.hasPending = false
	return target, true
}

// run executes the stored program from its first line. It returns when END
// executes, the last line falls through, a statement fails or ctx is
// cancelled. The engine is Ready again afterwards in every case.
func (b *TinyBASIC) run(ctx context.Context) error {
	if b.program.Len() == 0 {
		return nil
	}

	b.state = StateRunning
	defer func() {
		b.state = StateReady
	}()

	rc := &runContext{}
	steps := 0
	line := b.program.FirstLineNumber()
	logger.Debug(logger.AreaRun, "session %s: RUN from line %d", b.sessionID, line)

	for line != NoLine && !rc.ended {
		steps++
		if steps%b.checkInterval == 0 {
			select {
			case <-ctx.Done():
				b.state = StateEnded
				logger.Info(logger.AreaRun, "session %s: run interrupted at line %d after %d steps", b.sessionID, line, steps)
				return NewBASICError(ErrCategoryBreak, "run cancelled", line).WithCause(ctx.Err())
			default:
			}
		}

		entry, ok := b.program.Entry(line)
		if !ok {
			b.state = StateEnded
			return NewBASICError(ErrCategoryLineNumber, fmt.Sprintf("line %d vanished during run", line), line)
		}

		res, err := b.execute(ctx, entry.Stmt)
		rc.apply(res)
		if err != nil {
			b.state = StateEnded
			logger.Debug(logger.AreaRun, "session %s: run stopped at line %d: %v", b.sessionID, line, err)
			return atLine(err, line)
		}

		line = b.program.NextLineNumber(line, rc)
	}

	b.state = StateEnded
	logger.Debug(logger.AreaRun, "session %s: run finished after %d steps", b.sessionID, steps)
	return nil
}
