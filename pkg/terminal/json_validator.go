package terminal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/antibyte/retrobasic/pkg/shared"
)

// BreakCommand interrupts the statement the session is executing.
const BreakCommand = "__BREAK__"

// MaxLineLength is the longest input line a client may send.
const MaxLineLength = 1024

var (
	ErrInvalidMessage     = errors.New("invalid message")
	ErrUnsupportedMessage = errors.New("unsupported message type")
	ErrLineTooLong        = errors.New("input line too long")
)

// decodeClientMessage parses one frame from a client. Only input messages
// are accepted; the content must be a single line of printable text.
func decodeClientMessage(data []byte) (shared.Message, error) {
	var msg shared.Message

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if decoder.More() {
		return msg, fmt.Errorf("%w: trailing data", ErrInvalidMessage)
	}

	if msg.Type != shared.MessageTypeInput {
		return msg, fmt.Errorf("%w: %d", ErrUnsupportedMessage, int(msg.Type))
	}
	if len(msg.Content) > MaxLineLength {
		return msg, ErrLineTooLong
	}
	msg.Content = sanitizeLine(msg.Content)
	return msg, nil
}

// sanitizeLine drops the line terminator and any other control characters.
func sanitizeLine(line string) string {
	line = strings.TrimRight(line, "\r\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, line)
}

// ValidateSessionID checks that a session ID has the form the server issues.
func ValidateSessionID(sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("invalid session ID %q: %w", sessionID, err)
	}
	return nil
}
