package tinybasic

import (
	"fmt"
	"strings"

	"github.com/antibyte/retrobasic/pkg/expression"
	"github.com/antibyte/retrobasic/pkg/scanner"
)

// reservedWords cannot be used as variable names.
var reservedWords = map[string]struct{}{
	"REM": {}, "LET": {}, "PRINT": {}, "INPUT": {}, "END": {}, "GOTO": {}, "IF": {},
	"THEN": {}, "RUN": {}, "LIST": {}, "CLEAR": {}, "QUIT": {}, "HELP": {},
}

// IsReserved reports whether word is a statement or command keyword.
func IsReserved(word string) bool {
	_, ok := reservedWords[word]
	return ok
}

// IsVarLegal reports whether name may be used as a variable.
func IsVarLegal(name string) bool {
	if name == "" || IsReserved(name) {
		return false
	}
	return !strings.ContainsAny(name, "+-*/=")
}

// parseStatement builds the statement introduced by keyword from the rest of
// sc. Nothing is returned unless every token was consumed.
func parseStatement(sc *scanner.Scanner, keyword string) (Statement, error) {
	var (
		stmt Statement
		err  error
	)
	switch keyword {
	case "REM":
		return &Rem{Comment: sc.Remainder()}, nil
	case "LET":
		stmt, err = parseLet(sc)
	case "PRINT":
		stmt, err = parsePrint(sc)
	case "INPUT":
		stmt, err = parseInput(sc)
	case "END":
		stmt = &End{}
	case "GOTO":
		stmt, err = parseGoto(sc)
	case "IF":
		stmt, err = parseIf(sc)
	default:
		return nil, syntaxError(fmt.Sprintf("unknown statement %q", keyword))
	}
	if err != nil {
		return nil, err
	}
	if sc.HasMoreTokens() {
		return nil, syntaxError(fmt.Sprintf("unexpected %q after %s", sc.NextToken().Text, keyword))
	}
	return stmt, nil
}

func parseVariable(sc *scanner.Scanner, keyword string) (string, error) {
	tok := sc.NextToken()
	if tok.Type != scanner.TokenWord || !IsVarLegal(tok.Text) {
		return "", syntaxError(fmt.Sprintf("%s: illegal variable %q", keyword, tok.Text))
	}
	return tok.Text, nil
}

func parseExpression(sc *scanner.Scanner, keyword string, ceiling int) (expression.Expr, error) {
	e, err := expression.Parse(sc, ceiling)
	if err != nil {
		return nil, syntaxError(keyword + ": bad expression").WithCause(err)
	}
	for _, name := range expression.Variables(e) {
		if IsReserved(name) {
			return nil, syntaxError(fmt.Sprintf("%s: keyword %s used as a variable", keyword, name))
		}
	}
	return e, nil
}

// parseTarget reads a branch target, which must be a non-negative literal.
func parseTarget(sc *scanner.Scanner, keyword string) (int, error) {
	tok := sc.NextToken()
	if tok.Type != scanner.TokenNumber {
		return 0, syntaxError(fmt.Sprintf("%s: line number expected, got %q", keyword, tok.Text))
	}
	n, err := expression.ParseInteger(tok.Text)
	if err != nil {
		return 0, syntaxError(keyword + ": bad line number").WithCause(err)
	}
	return n, nil
}

func parseLet(sc *scanner.Scanner) (Statement, error) {
	name, err := parseVariable(sc, "LET")
	if err != nil {
		return nil, err
	}
	if op := sc.NextToken(); op.Text != "=" {
		return nil, syntaxError(fmt.Sprintf("LET: expected '=', got %q", op.Text))
	}
	value, err := parseExpression(sc, "LET", expression.PrecNone)
	if err != nil {
		return nil, err
	}
	return &Let{Var: name, Value: value}, nil
}

func parsePrint(sc *scanner.Scanner) (Statement, error) {
	value, err := parseExpression(sc, "PRINT", expression.PrecNone)
	if err != nil {
		return nil, err
	}
	return &Print{Value: value}, nil
}

func parseInput(sc *scanner.Scanner) (Statement, error) {
	name, err := parseVariable(sc, "INPUT")
	if err != nil {
		return nil, err
	}
	return &Input{Var: name}, nil
}

func parseGoto(sc *scanner.Scanner) (Statement, error) {
	target, err := parseTarget(sc, "GOTO")
	if err != nil {
		return nil, err
	}
	return &Goto{Target: target}, nil
}

func parseIf(sc *scanner.Scanner) (Statement, error) {
	lhs, err := parseExpression(sc, "IF", expression.PrecCompare)
	if err != nil {
		return nil, err
	}
	op := sc.NextToken()
	if op.Type != scanner.TokenOperator || (op.Text != "=" && op.Text != "<" && op.Text != ">") {
		return nil, syntaxError(fmt.Sprintf("IF: bad comparator %q", op.Text))
	}
	rhs, err := parseExpression(sc, "IF", expression.PrecCompare)
	if err != nil {
		return nil, err
	}
	if then := sc.NextToken(); then.Text != "THEN" {
		return nil, syntaxError(fmt.Sprintf("IF: expected THEN, got %q", then.Text))
	}
	target, err := parseTarget(sc, "IF")
	if err != nil {
		return nil, err
	}
	return &If{LHS: lhs, Cmp: op.Text[0], RHS: rhs, Target: target}, nil
}

// parseLineNumber converts the leading token of a program line.
func parseLineNumber(text string) (int, error) {
	n, err := expression.ParseInteger(text)
	if err != nil {
		return 0, syntaxError("bad line number").WithCause(err)
	}
	return n, nil
}
