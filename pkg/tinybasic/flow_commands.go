package tinybasic

import (
	"fmt"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// cmdGoto asks the engine to continue at the target line.
func (b *TinyBASIC) cmdGoto(s *Goto) (stepResult, error) {
	return b.branchTo(s.Target, "GOTO")
}

// cmdIf evaluates both sides and behaves like GOTO when the comparison holds.
func (b *TinyBASIC) cmdIf(s *If) (stepResult, error) {
	lhs, err := b.eval(s.LHS)
	if err != nil {
		return stepResult{}, err
	}
	rhs, err := b.eval(s.RHS)
	if err != nil {
		return stepResult{}, err
	}
	if !compare(s.Cmp, lhs, rhs) {
		return stepResult{}, nil
	}
	return b.branchTo(s.Target, "IF")
}

// branchTo validates a jump. A missing target ends the run.
func (b *TinyBASIC) branchTo(target int, keyword string) (stepResult, error) {
	if !b.program.HasLine(target) {
		logger.Debug(logger.AreaRun, "session %s: %s to missing line %d", b.sessionID, keyword, target)
		return stepResult{ended: true}, NewBASICError(ErrCategoryLineNumber, fmt.Sprintf("%s %d: no such line", keyword, target), NoLine)
	}
	return stepResult{jump: true, target: target}, nil
}
