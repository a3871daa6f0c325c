// Package expression parses and evaluates the integer expressions used by
// BASIC statements.
package expression

import (
	"errors"
	"fmt"
	"strconv"
)

// Evaluation errors. The messages are what the user sees.
var (
	ErrUndefinedVariable = errors.New("VARIABLE NOT DEFINED")
	ErrDivideByZero      = errors.New("DIVIDE BY ZERO")
)

// Parse errors.
var (
	ErrMissingTerm      = errors.New("missing term in expression")
	ErrIllegalTerm      = errors.New("illegal term in expression")
	ErrIllegalNumber    = errors.New("illegal number in expression")
	ErrUnbalancedParens = errors.New("unbalanced parentheses in expression")
)

// Expr is a parsed expression.
type Expr interface {
	Eval(env *Environment) (int, error)
	String() string
}

// Constant is an integer literal.
type Constant struct {
	Value int
}

func (c *Constant) Eval(env *Environment) (int, error) { return c.Value, nil }
func (c *Constant) String() string                     { return strconv.Itoa(c.Value) }

// Identifier is a variable reference.
type Identifier struct {
	Name string
}

func (id *Identifier) Eval(env *Environment) (int, error) {
	v, ok := env.Get(id.Name)
	if !ok {
		return 0, ErrUndefinedVariable
	}
	return v, nil
}

func (id *Identifier) String() string { return id.Name }

// Negate is unary minus.
type Negate struct {
	Operand Expr
}

func (n *Negate) Eval(env *Environment) (int, error) {
	v, err := n.Operand.Eval(env)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n *Negate) String() string { return "-" + n.Operand.String() }

// Compound is a binary operation.
type Compound struct {
	Op          string
	Left, Right Expr
}

func (c *Compound) Eval(env *Environment) (int, error) {
	l, err := c.Left.Eval(env)
	if err != nil {
		return 0, err
	}
	r, err := c.Right.Eval(env)
	if err != nil {
		return 0, err
	}
	switch c.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, ErrDivideByZero
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %q", c.Op)
}

func (c *Compound) String() string {
	return "(" + c.Left.String() + " " + c.Op + " " + c.Right.String() + ")"
}

// Variables returns the names e refers to, left to right, with repeats.
func Variables(e Expr) []string {
	switch e := e.(type) {
	case *Identifier:
		return []string{e.Name}
	case *Negate:
		return Variables(e.Operand)
	case *Compound:
		return append(Variables(e.Left), Variables(e.Right)...)
	}
	return nil
}

// IsIntegerLiteral reports whether s is an optional '-' followed by one or
// more decimal digits and nothing else.
func IsIntegerLiteral(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseInteger converts an integer literal, rejecting anything
// IsIntegerLiteral rejects and values that do not fit in an int.
func ParseInteger(s string) (int, error) {
	if !IsIntegerLiteral(s) {
		return 0, fmt.Errorf("%w: %q", ErrIllegalNumber, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrIllegalNumber, s)
	}
	return n, nil
}
