package tinybasic

import (
	"fmt"
	"strings"
)

// --- Help Text System ---

// helpOrder is the order commands appear in the HELP overview.
var helpOrder = []string{
	"LET", "PRINT", "INPUT", "GOTO", "IF", "END", "REM",
	"RUN", "LIST", "CLEAR", "HELP", "QUIT",
}

var commandUsageHints = map[string]string{
	"REM":   "n REM any text",
	"LET":   "[n] LET var = expr",
	"PRINT": "[n] PRINT expr",
	"INPUT": "[n] INPUT var",
	"END":   "n END",
	"GOTO":  "n GOTO line",
	"IF":    "n IF expr cmp expr THEN line",
	"RUN":   "RUN",
	"LIST":  "LIST",
	"CLEAR": "CLEAR",
	"QUIT":  "QUIT",
	"HELP":  "HELP",
}

// GetCommandSyntax returns the usage line for a command, or "" if the word
// is not a command.
func GetCommandSyntax(command string) string {
	return commandUsageHints[strings.ToUpper(strings.TrimSpace(command))]
}

// HelpText returns the lines printed by HELP.
func HelpText() []string {
	lines := []string{
		"TinyBASIC HELP OVERVIEW",
		"-----------------------",
		"Lines starting with a number are stored in the program.",
		"A number on its own deletes that line.",
		"LET, PRINT and INPUT may also be typed without a line number.",
		"Expressions use integers, variables, + - * / and parentheses.",
		"IF compares with =, < or >.",
		"",
	}
	for _, cmd := range helpOrder {
		lines = append(lines, fmt.Sprintf("  %-6s %s", cmd, commandUsageHints[cmd]))
	}
	return lines
}

// cmdHelp prints the overview.
func (b *TinyBASIC) cmdHelp() error {
	for _, line := range HelpText() {
		if _, err := fmt.Fprintln(b.out, line); err != nil {
			return err
		}
	}
	return nil
}
