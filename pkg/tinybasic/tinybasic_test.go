package tinybasic

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/antibyte/retrobasic/pkg/expression"
)

// scriptedInput answers INPUT from a fixed list and records the prompts.
type scriptedInput struct {
	answers []string
	prompts []string
}

func (s *scriptedInput) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	line := s.answers[0]
	s.answers = s.answers[1:]
	return line, nil
}

// NewTestBasic returns an interpreter wired to a scripted input and an
// output buffer.
func NewTestBasic(answers ...string) (*TinyBASIC, *scriptedInput, *bytes.Buffer) {
	in := &scriptedInput{answers: answers}
	out := &bytes.Buffer{}
	b := NewTinyBASIC(in, out)
	b.SetSessionID("test")
	return b, in, out
}

// feed sends every line through Execute and fails on a returned error.
func feed(t *testing.T, b *TinyBASIC, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := b.Execute(context.Background(), line); err != nil {
			t.Fatalf("Execute(%q) returned %v", line, err)
		}
	}
}

func TestListIsAscending(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "30 END", "100 PRINT 1", "10 LET X = 5", "9 REM first", "20 PRINT X", "LIST")

	want := "9 REM first\n10 LET X = 5\n20 PRINT X\n30 END\n100 PRINT 1\n"
	if got := out.String(); got != want {
		t.Errorf("LIST output = %q, want %q", got, want)
	}
}

func TestProgramRuns(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "assign and print",
			lines: []string{"10 LET X = 5", "20 PRINT X", "30 END"},
			want:  "5\n",
		},
		{
			name:  "loop with IF",
			lines: []string{"10 LET X = 0", "20 PRINT X", "30 LET X = X + 1", "40 IF X < 3 THEN 20", "50 END"},
			want:  "0\n1\n2\n",
		},
		{
			name:  "falls off the end",
			lines: []string{"10 PRINT 1", "20 PRINT 2"},
			want:  "1\n2\n",
		},
		{
			name:  "END stops before later lines",
			lines: []string{"10 PRINT 1", "20 END", "30 PRINT 3"},
			want:  "1\n",
		},
		{
			name:  "GOTO skips lines",
			lines: []string{"10 GOTO 30", "20 PRINT 2", "30 PRINT 3"},
			want:  "3\n",
		},
		{
			name:  "IF false falls through",
			lines: []string{"10 IF 1 > 2 THEN 30", "20 PRINT 2", "30 PRINT 3"},
			want:  "2\n3\n",
		},
		{
			name:  "IF equal",
			lines: []string{"10 IF 2 * 3 = 6 THEN 30", "20 PRINT 2", "30 PRINT 3"},
			want:  "3\n",
		},
		{
			name:  "REM does nothing",
			lines: []string{"10 REM X = 1 / 0", "20 PRINT 7"},
			want:  "7\n",
		},
		{
			name:  "RUN with empty program",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, out := NewTestBasic()
			feed(t, b, tt.lines...)
			feed(t, b, "RUN")
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
			if b.State() != StateReady {
				t.Errorf("state after RUN = %v, want %v", b.State(), StateReady)
			}
		})
	}
}

func TestRedefinitionReplacesLine(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "10 PRINT 1", "10 PRINT 2", "RUN")

	if got := out.String(); got != "2\n" {
		t.Errorf("output = %q, want %q", got, "2\n")
	}
	if b.Program().Len() != 1 {
		t.Errorf("program has %d lines, want 1", b.Program().Len())
	}
}

func TestRemoveLine(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "10 PRINT 1", "20 PRINT 2", "10", "99")

	if out.Len() != 0 {
		t.Errorf("removing lines printed %q", out.String())
	}
	if b.Program().HasLine(10) {
		t.Error("line 10 still present after removal")
	}
	if !b.Program().HasLine(20) {
		t.Error("line 20 missing")
	}
}

func TestMissingBranchTarget(t *testing.T) {
	for _, branch := range []string{"20 GOTO 99", "20 IF 1 = 1 THEN 99"} {
		t.Run(branch, func(t *testing.T) {
			b, _, out := NewTestBasic()
			feed(t, b, "10 PRINT 1", branch, "30 PRINT 3")

			err := b.ProcessLine(context.Background(), "RUN")
			if !errors.Is(err, ErrLineNumber) {
				t.Fatalf("RUN error = %v, want %v", err, ErrLineNumber)
			}
			var be *BASICError
			if !errors.As(err, &be) || be.LineNumber != 20 {
				t.Errorf("error line = %+v, want line 20", be)
			}
			if got := out.String(); got != "1\n" {
				t.Errorf("output = %q, want %q", got, "1\n")
			}
			if b.State() != StateReady {
				t.Errorf("state = %v, want %v", b.State(), StateReady)
			}
		})
	}
}

func TestMissingBranchTargetIsReported(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "10 GOTO 5", "RUN", "PRINT 1")

	want := "LINE NUMBER ERROR\n1\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunErrorKeepsEarlierEffects(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "10 LET X = 1", "20 LET Y = X / 0", "30 LET X = 2", "RUN")

	if got := out.String(); got != "DIVIDE BY ZERO\n" {
		t.Errorf("output = %q", got)
	}
	if v, ok := b.Environment().Get("X"); !ok || v != 1 {
		t.Errorf("X = %d, %v; want 1", v, ok)
	}
	if b.Environment().IsDefined("Y") {
		t.Error("Y was assigned")
	}
}

func TestVariablesSurviveRun(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "LET A = 40", "10 LET B = A + 2", "RUN", "PRINT B", "RUN", "PRINT B")

	if got := out.String(); got != "42\n42\n" {
		t.Errorf("output = %q", got)
	}
}

func TestClear(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "10 PRINT 1", "LET X = 1", "CLEAR", "PRINT X", "LIST", "RUN")

	if got := out.String(); got != "VARIABLE NOT DEFINED\n" {
		t.Errorf("output = %q", got)
	}
	if b.Program().Len() != 0 || b.Environment().Len() != 0 {
		t.Errorf("CLEAR left %d lines and %d variables", b.Program().Len(), b.Environment().Len())
	}

	err := b.ProcessLine(context.Background(), "PRINT X")
	if !errors.Is(err, ErrEvaluation) || !errors.Is(err, expression.ErrUndefinedVariable) {
		t.Errorf("PRINT X error = %v", err)
	}
}

func TestImmediateStatements(t *testing.T) {
	b, _, out := NewTestBasic("12")
	feed(t, b, "PRINT 2 + 2", "LET X = 3 * (2 + 1)", "PRINT X", "INPUT Y", "PRINT X + Y")

	if got := out.String(); got != "4\n9\n21\n" {
		t.Errorf("output = %q", got)
	}
	if b.Program().Len() != 0 {
		t.Errorf("immediate statements stored %d lines", b.Program().Len())
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []string{
		"5 LET 3 = 2",
		"5 LET X 2",
		"5 PRINT",
		"5 PRINT 1 2",
		"5 FOO",
		"5 + 1",
		"5.5 PRINT 1",
		"5 GOTO X",
		"5 IF X <= 1 THEN 10",
		"5 END 1",
		"LET PRINT = 1",
		"LET X- = 1",
		"PRINT (1",
		"INPUT 3",
		"GOTO 10",
		"IF 1 = 1 THEN 10",
		"END",
		"REM hello",
		"RUN 10",
		"LIST 10",
		"CLEAR X",
		"QUIT NOW",
		"HELP LET",
		"run",
		"= 3",
		"-10 PRINT 1",
		"PRINT THEN",
		"LET X = RUN + 1",
		"5 IF LIST = 1 THEN 10",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			b, _, out := NewTestBasic()
			err := b.ProcessLine(context.Background(), line)
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("ProcessLine(%q) = %v, want %v", line, err, ErrSyntax)
			}
			if b.Program().Len() != 0 || b.Environment().Len() != 0 {
				t.Errorf("rejected line changed the session")
			}

			if err := b.Execute(context.Background(), line); err != nil {
				t.Fatalf("Execute(%q) = %v", line, err)
			}
			if got := out.String(); got != "SYNTAX ERROR\n" {
				t.Errorf("output = %q", got)
			}
		})
	}
}

func TestRejectedLineKeepsOldDefinition(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "10 PRINT 1", "10 PRINT", "RUN")

	if got := out.String(); got != "SYNTAX ERROR\n1\n" {
		t.Errorf("output = %q", got)
	}
}

func TestBlankLinesIgnored(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "", "   ", "\r\n")
	if out.Len() != 0 {
		t.Errorf("blank lines printed %q", out.String())
	}
}

func TestQuit(t *testing.T) {
	b, _, out := NewTestBasic()
	if err := b.Execute(context.Background(), "QUIT"); !errors.Is(err, ErrQuit) {
		t.Errorf("QUIT = %v, want %v", err, ErrQuit)
	}
	if out.Len() != 0 {
		t.Errorf("QUIT printed %q", out.String())
	}
}

func TestHelp(t *testing.T) {
	b, _, out := NewTestBasic()
	feed(t, b, "HELP")
	for _, cmd := range helpOrder {
		if !strings.Contains(out.String(), commandUsageHints[cmd]) {
			t.Errorf("HELP does not mention %s", cmd)
		}
	}
	if GetCommandSyntax("goto") != "n GOTO line" {
		t.Errorf("GetCommandSyntax(goto) = %q", GetCommandSyntax("goto"))
	}
}

func TestInputRetries(t *testing.T) {
	b, in, out := NewTestBasic("abc", "1.5", " -7 ")
	feed(t, b, "10 INPUT N", "20 PRINT N * 2", "RUN")

	if got := out.String(); got != "INVALID NUMBER\nINVALID NUMBER\n-14\n" {
		t.Errorf("output = %q", got)
	}
	if len(in.prompts) != 3 || in.prompts[0] != DefaultInputPrompt {
		t.Errorf("prompts = %q", in.prompts)
	}
}

func TestInputRetryLimit(t *testing.T) {
	b, _, out := NewTestBasic("x", "y", "3")
	b.inputRetryLimit = 2
	feed(t, b, "INPUT N")

	if got := out.String(); got != "INVALID NUMBER\nINVALID NUMBER\n" {
		t.Errorf("output = %q", got)
	}
	if b.Environment().IsDefined("N") {
		t.Error("N assigned after exhausting retries")
	}
}

func TestInputEndOfStream(t *testing.T) {
	b, _, _ := NewTestBasic()
	err := b.Execute(context.Background(), "INPUT N")
	if !errors.Is(err, io.EOF) {
		t.Errorf("Execute = %v, want io.EOF", err)
	}
}

func TestRunBreak(t *testing.T) {
	b, _, out := NewTestBasic()
	b.checkInterval = 1
	feed(t, b, "10 LET X = 1", "20 GOTO 10")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.ProcessLine(ctx, "RUN")
	if !errors.Is(err, ErrBreak) || !errors.Is(err, context.Canceled) {
		t.Fatalf("RUN = %v, want BREAK", err)
	}
	if b.State() != StateReady {
		t.Errorf("state = %v, want %v", b.State(), StateReady)
	}

	if err := b.Execute(ctx, "RUN"); err != nil {
		t.Fatalf("Execute = %v", err)
	}
	if got := out.String(); got != "BREAK\n" {
		t.Errorf("output = %q", got)
	}
}

func TestInputBreak(t *testing.T) {
	b, _, out := NewTestBasic("1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Execute(ctx, "INPUT N"); err != nil {
		t.Fatalf("Execute = %v", err)
	}
	if got := out.String(); got != "BREAK\n" {
		t.Errorf("output = %q", got)
	}
}

func TestErrorLineInLog(t *testing.T) {
	b, _, _ := NewTestBasic()
	feed(t, b, "0 GOTO 5")

	err := b.ProcessLine(context.Background(), "RUN")
	var be *BASICError
	if !errors.As(err, &be) {
		t.Fatalf("RUN error = %v", err)
	}
	if be.LineNumber != 0 || !strings.Contains(be.LogString(), "(line 0)") {
		t.Errorf("line %d, log %q; want line 0 named", be.LineNumber, be.LogString())
	}

	err = b.ProcessLine(context.Background(), "PRINT Y")
	if !errors.As(err, &be) {
		t.Fatalf("immediate error = %v", err)
	}
	if be.LineNumber != NoLine || strings.Contains(be.LogString(), "(line") {
		t.Errorf("immediate error carries a line: %q", be.LogString())
	}
}
