package shell

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenEOF         TokenKind = iota // end of line or buffer
	TokenAmpersand                    // &
	TokenHistory                      // !!
	TokenRedirectOut                  // >
	TokenRedirectIn                   // <
	TokenPipe                         // |
	TokenWord                         // anything else
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenAmpersand:
		return "&"
	case TokenHistory:
		return "!!"
	case TokenRedirectOut:
		return ">"
	case TokenRedirectIn:
		return "<"
	case TokenPipe:
		return "|"
	case TokenWord:
		return "word"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a single lexical unit. Only words carry Text.
type Token struct {
	Kind TokenKind
	Text string
	// Pos is the byte offset of the token in the line.
	Pos int
}

func (t Token) String() string {
	if t.Kind == TokenWord {
		return t.Text
	}
	return t.Kind.String()
}
