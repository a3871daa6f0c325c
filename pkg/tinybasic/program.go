package tinybasic

import (
	"fmt"

	"github.com/goforj/godump"
	"github.com/google/btree"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/scanner"
)

// NoLine is returned by the line queries when there is no such line.
const NoLine = -1

// btreeDegree matches the small programs typed at a BASIC prompt.
const btreeDegree = 4

// LineEntry is one stored program line.
type LineEntry struct {
	Number int
	Text   string // the line exactly as entered, used by LIST
	Stmt   Statement
}

func lessEntry(a, b *LineEntry) bool {
	return a.Number < b.Number
}

// Program is the line store: parsed statements keyed by line number and
// iterated in ascending order.
type Program struct {
	lines *btree.BTreeG[*LineEntry]
	trace bool
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		lines: btree.NewG(btreeDegree, lessEntry),
		trace: configuration.GetBool("Debug", "trace_statements", false),
	}
}

// AddSourceLine parses text, which must start with number, and stores the
// statement under number, replacing any previous definition. A line that
// does not parse leaves the program unchanged.
func (p *Program) AddSourceLine(number int, text string) error {
	sc := scanner.New(text)
	first := sc.NextToken()
	if n, err := parseLineNumber(first.Text); first.Type != scanner.TokenNumber || err != nil || n != number {
		return syntaxError(fmt.Sprintf("line text %q does not start with %d", text, number)).WithLine(number)
	}

	keyword := sc.NextToken()
	if keyword.Type != scanner.TokenWord {
		return syntaxError(fmt.Sprintf("statement expected, got %q", keyword.Text)).WithLine(number)
	}
	stmt, err := parseStatement(sc, keyword.Text)
	if err != nil {
		return atLine(err, number)
	}

	if p.trace {
		logger.Debug(logger.AreaProgram, "line %d parsed:\n%s", number, godump.DumpStr(stmt))
	}
	if old, replaced := p.lines.ReplaceOrInsert(&LineEntry{Number: number, Text: text, Stmt: stmt}); replaced {
		logger.Debug(logger.AreaProgram, "line %d replaced (%s -> %s)", number, old.Stmt.Keyword(), stmt.Keyword())
	} else {
		logger.Debug(logger.AreaProgram, "line %d stored (%s)", number, stmt.Keyword())
	}
	return nil
}

// RemoveSourceLine deletes line number. Removing a line that does not exist
// is not an error; the result reports whether anything was deleted.
func (p *Program) RemoveSourceLine(number int) bool {
	_, removed := p.lines.Delete(&LineEntry{Number: number})
	if removed {
		logger.Debug(logger.AreaProgram, "line %d removed", number)
	}
	return removed
}

// Clear deletes every line. The caller resets the variables.
func (p *Program) Clear() {
	p.lines.Clear(false)
	logger.Debug(logger.AreaProgram, "program cleared")
}

// Len returns the number of stored lines.
func (p *Program) Len() int {
	return p.lines.Len()
}

// HasLine reports whether number is stored.
func (p *Program) HasLine(number int) bool {
	return p.lines.Has(&LineEntry{Number: number})
}

// Entry returns the stored line number.
func (p *Program) Entry(number int) (*LineEntry, bool) {
	return p.lines.Get(&LineEntry{Number: number})
}

// SourceLine returns the text of line number, or "" if it is not stored.
func (p *Program) SourceLine(number int) string {
	if e, ok := p.Entry(number); ok {
		return e.Text
	}
	return ""
}

// Statement returns the parsed statement of line number, or nil.
func (p *Program) Statement(number int) Statement {
	if e, ok := p.Entry(number); ok {
		return e.Stmt
	}
	return nil
}

// FirstLineNumber returns the smallest stored line number or NoLine.
func (p *Program) FirstLineNumber() int {
	if e, ok := p.lines.Min(); ok {
		return e.Number
	}
	return NoLine
}

// NextLineNumber returns the line to execute after current. A pending
// branch in rc wins and is consumed; otherwise it is the next higher stored
// line, or NoLine.
func (p *Program) NextLineNumber(current int, rc *runContext) int {
	if target, ok := rc.takeBranch(); ok {
		return target
	}
	next := NoLine
	p.lines.AscendGreaterOrEqual(&LineEntry{Number: current}, func(e *LineEntry) bool {
		if e.Number == current {
			return true
		}
		next = e.Number
		return false
	})
	return next
}

// Lines returns the stored lines in ascending order.
func (p *Program) Lines() []*LineEntry {
	lines := make([]*LineEntry, 0, p.lines.Len())
	p.lines.Ascend(func(e *LineEntry) bool {
		lines = append(lines, e)
		return true
	})
	return lines
}
