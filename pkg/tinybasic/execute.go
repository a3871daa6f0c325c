package tinybasic

import (
	"context"
	"fmt"

	"github.com/antibyte/retrobasic/pkg/expression"
)

// execute runs one statement against the session's variables. Branches and
// END are reported through the result and never applied here.
func (b *TinyBASIC) execute(ctx context.Context, stmt Statement) (stepResult, error) {
	switch s := stmt.(type) {
	case *Rem:
		return stepResult{}, nil
	case *Let:
		return stepResult{}, b.cmdLet(s)
	case *Print:
		return stepResult{}, b.cmdPrint(s)
	case *Input:
		return stepResult{}, b.cmdInput(ctx, s)
	case *End:
		return b.cmdEnd()
	case *Goto:
		return b.cmdGoto(s)
	case *If:
		return b.cmdIf(s)
	}
	panic(fmt.Sprintf("tinybasic: unhandled statement type %T", stmt))
}

// eval evaluates e, turning evaluator failures into BASIC errors.
func (b *TinyBASIC) eval(e expression.Expr) (int, error) {
	v, err := e.Eval(b.env)
	if err != nil {
		return 0, NewBASICError(ErrCategoryEvaluation, e.String(), NoLine).WithCause(err)
	}
	return v, nil
}
