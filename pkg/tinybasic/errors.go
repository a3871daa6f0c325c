// Package tinybasic implements a line-numbered BASIC interpreter: program
// storage, statement execution and command dispatch.
package tinybasic

import (
	"errors"
	"fmt"
)

// Sentinel errors. A *BASICError matches the sentinel of its category with
// errors.Is.
var (
	ErrSyntax        = errors.New("SYNTAX ERROR")
	ErrLineNumber    = errors.New("LINE NUMBER ERROR")
	ErrEvaluation    = errors.New("EVALUATION ERROR")
	ErrBreak         = errors.New("BREAK")
	ErrInvalidNumber = errors.New("INVALID NUMBER")

	// ErrQuit is returned by Execute after the QUIT command.
	ErrQuit = errors.New("QUIT command executed")
)

// Fehlerkategorien
const (
	ErrCategorySyntax     = "SYNTAX ERROR"
	ErrCategoryLineNumber = "LINE NUMBER ERROR"
	ErrCategoryEvaluation = "EVALUATION ERROR"
	ErrCategoryBreak      = "BREAK"
	ErrCategoryInput      = "INVALID NUMBER"
)

var categorySentinels = map[string]error{
	ErrCategorySyntax:     ErrSyntax,
	ErrCategoryLineNumber: ErrLineNumber,
	ErrCategoryEvaluation: ErrEvaluation,
	ErrCategoryBreak:      ErrBreak,
	ErrCategoryInput:      ErrInvalidNumber,
}

// BASICError is an error raised while building or executing a statement.
// Error returns the text shown to the user; Detail and LineNumber are for
// the log.
type BASICError struct {
	Category   string
	Detail     string
	LineNumber int // NoLine in immediate mode
	Cause      error
}

// Error implements the error interface. Evaluation errors show the
// evaluator's own message, everything else shows its category.
func (be *BASICError) Error() string {
	if be.Category == ErrCategoryEvaluation && be.Cause != nil {
		return be.Cause.Error()
	}
	return be.Category
}

// Unwrap exposes both the category sentinel and the cause.
func (be *BASICError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := categorySentinels[be.Category]; ok {
		errs = append(errs, sentinel)
	}
	if be.Cause != nil {
		errs = append(errs, be.Cause)
	}
	return errs
}

// LogString describes the error with everything the user does not see.
func (be *BASICError) LogString() string {
	msg := be.Error()
	if be.LineNumber != NoLine {
		msg += fmt.Sprintf(" (line %d)", be.LineNumber)
	}
	if be.Detail != "" {
		msg += ": " + be.Detail
	}
	if be.Cause != nil && be.Category != ErrCategoryEvaluation {
		msg += fmt.Sprintf(" [%v]", be.Cause)
	}
	return msg
}

// NewBASICError creates an error of the given category.
func NewBASICError(category, detail string, lineNumber int) *BASICError {
	return &BASICError{
		Category:   category,
		Detail:     detail,
		LineNumber: lineNumber,
	}
}

// WithCause records the underlying error.
func (be *BASICError) WithCause(err error) *BASICError {
	be.Cause = err
	return be
}

// WithLine sets the program line the error belongs to, unless one is
// already set.
func (be *BASICError) WithLine(lineNumber int) *BASICError {
	if be.LineNumber == NoLine {
		be.LineNumber = lineNumber
	}
	return be
}

func syntaxError(detail string) *BASICError {
	return NewBASICError(ErrCategorySyntax, detail, NoLine)
}

// atLine attaches lineNumber to err if it is a *BASICError.
func atLine(err error, lineNumber int) error {
	var be *BASICError
	if errors.As(err, &be) {
		be.WithLine(lineNumber)
	}
	return err
}
