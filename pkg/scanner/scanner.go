// Package scanner splits a BASIC source line into words, numbers and
// single-character operators.
package scanner

// TokenType classifies a scanned token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWord
	TokenNumber
	TokenOperator
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenWord:
		return "WORD"
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OPERATOR"
	}
	return "UNKNOWN"
}

// Token is one lexical unit of a line. Pos is the byte offset of the
// token in the input.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

// Scanner hands out the tokens of a single line. Whitespace is skipped and
// numeric literals are returned as one token.
type Scanner struct {
	input string
	pos   int
	saved []Token
}

// New creates a scanner over input.
func New(input string) *Scanner {
	return &Scanner{input: input}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func (s *Scanner) skipWhitespace() {
	for s.pos < len(s.input) && isSpace(s.input[s.pos]) {
		s.pos++
	}
}

// HasMoreTokens reports whether NextToken would return anything but EOF.
func (s *Scanner) HasMoreTokens() bool {
	if len(s.saved) > 0 {
		return true
	}
	s.skipWhitespace()
	return s.pos < len(s.input)
}

// SaveToken pushes tok back so the next call to NextToken returns it again.
// EOF tokens are never saved.
func (s *Scanner) SaveToken(tok Token) {
	if tok.Type == TokenEOF {
		return
	}
	s.saved = append(s.saved, tok)
}

// NextToken returns the next token, or a token of type TokenEOF with empty
// text once the input is exhausted.
func (s *Scanner) NextToken() Token {
	if n := len(s.saved); n > 0 {
		tok := s.saved[n-1]
		s.saved = s.saved[:n-1]
		return tok
	}

	s.skipWhitespace()
	if s.pos >= len(s.input) {
		return Token{Type: TokenEOF, Pos: s.pos}
	}

	start := s.pos
	ch := s.input[s.pos]
	switch {
	case isDigit(ch):
		return s.number(start)
	case isAlpha(ch):
		for s.pos < len(s.input) && (isAlpha(s.input[s.pos]) || isDigit(s.input[s.pos])) {
			s.pos++
		}
		return Token{Type: TokenWord, Text: s.input[start:s.pos], Pos: start}
	default:
		s.pos++
		return Token{Type: TokenOperator, Text: s.input[start:s.pos], Pos: start}
	}
}

// number scans digits with an optional fraction. Fractions are kept in the
// token so callers can reject them as a whole instead of seeing "3" "." "5".
func (s *Scanner) number(start int) Token {
	for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
		s.pos++
	}
	if s.pos+1 < len(s.input) && s.input[s.pos] == '.' && isDigit(s.input[s.pos+1]) {
		s.pos++
		for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
			s.pos++
		}
	}
	return Token{Type: TokenNumber, Text: s.input[start:s.pos], Pos: start}
}

// Remainder returns the unscanned rest of the input with leading
// whitespace removed. Saved tokens are not included.
func (s *Scanner) Remainder() string {
	s.skipWhitespace()
	return s.input[s.pos:]
}
