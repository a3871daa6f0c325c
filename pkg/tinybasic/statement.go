package tinybasic

import (
	"github.com/antibyte/retrobasic/pkg/expression"
)

// Statement is one parsed BASIC statement. The set of implementations is
// closed: Rem, Let, Print, Input, End, Goto and If.
type Statement interface {
	Keyword() string
	statement()
}

// Rem is a comment.
type Rem struct {
	Comment string
}

// Let assigns the value of an expression to a variable.
type Let struct {
	Var   string
	Value expression.Expr
}

// Print writes the value of an expression on its own line.
type Print struct {
	Value expression.Expr
}

// Input reads an integer from the user into a variable.
type Input struct {
	Var string
}

// End stops the running program.
type End struct{}

// Goto continues execution at Target.
type Goto struct {
	Target int
}

// If jumps to Target when LHS Cmp RHS holds. Cmp is one of '=', '<', '>'.
type If struct {
	LHS    expression.Expr
	Cmp    byte
	RHS    expression.Expr
	Target int
}

func (*Rem) Keyword() string   { return "REM" }
func (*Let) Keyword() string   { return "LET" }
func (*Print) Keyword() string { return "PRINT" }
func (*Input) Keyword() string { return "INPUT" }
func (*End) Keyword() string   { return "END" }
func (*Goto) Keyword() string  { return "GOTO" }
func (*If) Keyword() string    { return "IF" }

func (*Rem) statement()   {}
func (*Let) statement()   {}
func (*Print) statement() {}
func (*Input) statement() {}
func (*End) statement()   {}
func (*Goto) statement()  {}
func (*If) statement()    {}

// compare applies an IF comparator.
func compare(cmp byte, lhs, rhs int) bool {
	switch cmp {
	case '<':
		return lhs < rhs
	case '>':
		return lhs > rhs
	default:
		return lhs == rhs
	}
}
