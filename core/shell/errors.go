package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyArguments is returned when a stage has more words than the
	// parser's argument limit.
	ErrTooManyArguments = errors.New("too many arguments")
	// ErrTooManyStages is returned when a pipeline has more stages than the
	// parser's stage limit.
	ErrTooManyStages = errors.New("too many pipeline stages")
	// ErrSyntax is returned for malformed lines.
	ErrSyntax = errors.New("syntax error")
	// ErrEmptyInput is returned when a line has nothing to run.
	ErrEmptyInput = errors.New("empty input")
)

// ParseError records where parsing stopped and why.
type ParseError struct {
	// Kind is one of the Err* sentinels in this package.
	Kind error
	// Pos is the byte offset of the offending token.
	Pos int
	// Near is the offending token, empty for ErrEmptyInput.
	Near string
}

func (e *ParseError) Error() string {
	if e.Near == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s near %q at column %d", e.Kind, e.Near, e.Pos+1)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func syntaxError(tok Token) error {
	return &ParseError{Kind: ErrSyntax, Pos: tok.Pos, Near: tok.String()}
}
