package repl

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/josephlewis42/osh/core/config"
	"github.com/josephlewis42/osh/core/shell"
)

const (
	msgTooManyArguments = "Too many arguments."
	msgTooManyStages    = "Too many pipeline stages."
	msgSyntax           = "Syntax error."
	msgNoHistory        = "No commands in history."
	msgHistoryReparse   = "Error parsing history."
)

// ColorPrinter colorizes diagnostics depending on the configured mode.
type ColorPrinter struct {
	// Mode is one of config.ColorAuto, config.ColorAlways or config.ColorNever.
	Mode string
	// IsTerminal reports whether output goes to a terminal in auto mode.
	IsTerminal func() bool
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case c == nil || c.Mode == config.ColorNever:
		return false
	case c.Mode == config.ColorAlways:
		return true
	default:
		return c.IsTerminal != nil && c.IsTerminal()
	}
}

// Sprintf formats with the given attributes when coloring is enabled.
func (c *ColorPrinter) Sprintf(attrs []color.Attribute, format string, a ...interface{}) string {
	if !c.ShouldColor() {
		return fmt.Sprintf(format, a...)
	}

	// Force output, color's own tty check looks at the process stdout.
	colored := color.New(attrs...)
	colored.EnableColor()
	return colored.Sprintf(format, a...)
}

var (
	attrError = []color.Attribute{color.FgRed, color.Bold}
	attrEcho  = []color.Attribute{color.FgCyan}
)

// parseDiagnostic maps a parse error to the message shown to the user, empty
// for errors that are silent.
func parseDiagnostic(err error) string {
	switch {
	case errors.Is(err, shell.ErrEmptyInput):
		return ""
	case errors.Is(err, shell.ErrTooManyArguments):
		return msgTooManyArguments
	case errors.Is(err, shell.ErrTooManyStages):
		return msgTooManyStages
	default:
		return msgSyntax
	}
}

// errorKind returns the sentinel text used to group errors in the event log.
func errorKind(err error) string {
	var parseErr *shell.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Kind.Error()
	}
	return err.Error()
}
