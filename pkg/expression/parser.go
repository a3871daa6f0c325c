package expression

import (
	"fmt"

	"github.com/antibyte/retrobasic/pkg/scanner"
)

// Precedence levels. Parse stops at any operator whose level is not above
// the ceiling it was called with.
const (
	PrecNone    = iota
	PrecCompare // = < > are never consumed at or below this level
	PrecTerm    // + -
	PrecFactor  // * /
)

func precedence(tok scanner.Token) int {
	if tok.Type != scanner.TokenOperator {
		return PrecNone
	}
	switch tok.Text {
	case "+", "-":
		return PrecTerm
	case "*", "/":
		return PrecFactor
	}
	return PrecNone
}

// Parse reads an expression from sc. Tokens that cannot continue the
// expression are left in the scanner for the caller.
func Parse(sc *scanner.Scanner, ceiling int) (Expr, error) {
	lhs, err := parseTerm(sc)
	if err != nil {
		return nil, err
	}
	for {
		tok := sc.NextToken()
		prec := precedence(tok)
		if prec <= ceiling {
			sc.SaveToken(tok)
			return lhs, nil
		}
		rhs, err := Parse(sc, prec)
		if err != nil {
			return nil, err
		}
		lhs = &Compound{Op: tok.Text, Left: lhs, Right: rhs}
	}
}

func parseTerm(sc *scanner.Scanner) (Expr, error) {
	tok := sc.NextToken()
	switch tok.Type {
	case scanner.TokenEOF:
		return nil, ErrMissingTerm
	case scanner.TokenNumber:
		n, err := ParseInteger(tok.Text)
		if err != nil {
			return nil, err
		}
		return &Constant{Value: n}, nil
	case scanner.TokenWord:
		return &Identifier{Name: tok.Text}, nil
	}

	switch tok.Text {
	case "(":
		inner, err := Parse(sc, PrecNone)
		if err != nil {
			return nil, err
		}
		if closing := sc.NextToken(); closing.Text != ")" {
			sc.SaveToken(closing)
			return nil, ErrUnbalancedParens
		}
		return inner, nil
	case "-":
		operand, err := parseTerm(sc)
		if err != nil {
			return nil, err
		}
		return &Negate{Operand: operand}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrIllegalTerm, tok.Text)
}
