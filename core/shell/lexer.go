package shell

import "strings"

// NextToken reads the token starting at or after pos in line and returns it
// with the offset to continue from. It holds no state of its own.
//
// A line feed ends the input: the returned offset stays on it so every
// following call yields TokenEOF as well.
func NextToken(line string, pos int) (Token, int) {
	for pos < len(line) && isSpace(line[pos]) {
		pos++
	}

	if pos >= len(line) {
		return Token{Kind: TokenEOF, Pos: len(line)}, len(line)
	}

	switch c := line[pos]; c {
	case '\n':
		return Token{Kind: TokenEOF, Pos: pos}, pos
	case '&':
		return Token{Kind: TokenAmpersand, Pos: pos}, pos + 1
	case '>':
		return Token{Kind: TokenRedirectOut, Pos: pos}, pos + 1
	case '<':
		return Token{Kind: TokenRedirectIn, Pos: pos}, pos + 1
	case '|':
		return Token{Kind: TokenPipe, Pos: pos}, pos + 1
	case '!':
		if pos+1 < len(line) && line[pos+1] == '!' {
			return Token{Kind: TokenHistory, Pos: pos}, pos + 2
		}
	}

	end := pos + 1
	for end < len(line) && isWordByte(line[end]) {
		end++
	}

	// Clone so the token never aliases the caller's buffer.
	return Token{Kind: TokenWord, Text: strings.Clone(line[pos:end]), Pos: pos}, end
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isWordByte(c byte) bool {
	switch c {
	case '&', '>', '<', '|', '\n':
		return false
	default:
		return !isSpace(c)
	}
}

// Lexer produces the tokens of a single line on demand.
type Lexer struct {
	line string
	pos  int
}

// NewLexer creates a lexer positioned at the start of line.
func NewLexer(line string) *Lexer {
	return &Lexer{line: line}
}

// Next returns the next token. After the end of input it keeps returning
// TokenEOF.
func (l *Lexer) Next() Token {
	tok, pos := NextToken(l.line, l.pos)
	l.pos = pos
	return tok
}

// Tokenize lexes a whole line, the trailing TokenEOF included.
func Tokenize(line string) []Token {
	lx := NewLexer(line)
	var out []Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == TokenEOF {
			return out
		}
	}
}
