package repl

import (
	"fmt"
	"testing"

	"github.com/josephlewis42/osh/core/config"
	"github.com/josephlewis42/osh/core/shell"
	"github.com/stretchr/testify/assert"
)

func TestColorPrinter(t *testing.T) {
	terminal := func() bool { return true }
	pipe := func() bool { return false }

	cases := map[string]struct {
		printer *ColorPrinter
		colored bool
	}{
		"nil":           {nil, false},
		"never":         {&ColorPrinter{Mode: config.ColorNever, IsTerminal: terminal}, false},
		"always":        {&ColorPrinter{Mode: config.ColorAlways, IsTerminal: pipe}, true},
		"auto-terminal": {&ColorPrinter{Mode: config.ColorAuto, IsTerminal: terminal}, true},
		"auto-pipe":     {&ColorPrinter{Mode: config.ColorAuto, IsTerminal: pipe}, false},
		"auto-unknown":  {&ColorPrinter{Mode: config.ColorAuto}, false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.colored, tc.printer.ShouldColor())

			out := tc.printer.Sprintf(attrError, "%s", msgSyntax)
			if tc.colored {
				assert.Contains(t, out, "\x1b[")
				assert.Contains(t, out, msgSyntax)
			} else {
				assert.Equal(t, msgSyntax, out)
			}
		})
	}
}

func TestParseDiagnostic(t *testing.T) {
	parser := shell.NewParser(2, 2)

	cases := map[string]string{
		"a b c":     msgTooManyArguments,
		"a | b | c": msgTooManyStages,
		"a < ":      msgSyntax,
		"":          "",
	}

	for line, want := range cases {
		t.Run(fmt.Sprintf("%q", line), func(t *testing.T) {
			_, err := parser.Parse(line)
			assert.Error(t, err)
			assert.Equal(t, want, parseDiagnostic(err))
		})
	}
}

func TestErrorKind(t *testing.T) {
	_, err := shell.NewParser(0, 0).Parse("a | | b")
	assert.Equal(t, "syntax error", errorKind(err))
	assert.Equal(t, "no commands in history", errorKind(ErrNoHistory))
}
