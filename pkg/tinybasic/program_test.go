package tinybasic

import (
	"errors"
	"testing"
)

func TestEmptyProgram(t *testing.T) {
	p := NewProgram()
	if got := p.FirstLineNumber(); got != NoLine {
		t.Errorf("FirstLineNumber = %d, want NoLine", got)
	}
	if got := p.NextLineNumber(10, &runContext{}); got != NoLine {
		t.Errorf("NextLineNumber = %d, want NoLine", got)
	}
	if p.RemoveSourceLine(10) {
		t.Error("removing an absent line reported a deletion")
	}
}

func TestNextLineNumber(t *testing.T) {
	p := NewProgram()
	for _, line := range []struct {
		n    int
		text string
	}{
		{30, "30 END"},
		{10, "10 PRINT 1"},
		{20, "20 GOTO 10"},
	} {
		if err := p.AddSourceLine(line.n, line.text); err != nil {
			t.Fatalf("AddSourceLine(%q): %v", line.text, err)
		}
	}

	if got := p.FirstLineNumber(); got != 10 {
		t.Errorf("FirstLineNumber = %d, want 10", got)
	}

	rc := &runContext{}
	tests := []struct {
		current int
		branch  int // 0 = none
		want    int
	}{
		{10, 0, 20},
		{20, 0, 30},
		{30, 0, NoLine},
		{15, 0, 20},
		{30, 10, 10},
		{10, 0, 20}, // the branch was consumed
	}
	for _, tt := range tests {
		if tt.branch != 0 {
			rc.apply(stepResult{jump: true, target: tt.branch})
		}
		if got := p.NextLineNumber(tt.current, rc); got != tt.want {
			t.Errorf("NextLineNumber(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestAddSourceLineValidation(t *testing.T) {
	p := NewProgram()
	if err := p.AddSourceLine(10, "10 PRINT 1"); err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"10 LET 3 = 2", "10 PRINT", "10 GOTO", "10 IF X = 1 THEN", "11 PRINT 1", "10"} {
		err := p.AddSourceLine(10, text)
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("AddSourceLine(%q) = %v, want %v", text, err, ErrSyntax)
		}
	}
	if got := p.SourceLine(10); got != "10 PRINT 1" {
		t.Errorf("line 10 = %q after rejected edits", got)
	}
	if _, ok := p.Statement(10).(*Print); !ok {
		t.Errorf("line 10 statement = %T", p.Statement(10))
	}
}
