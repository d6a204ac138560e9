package shell

const (
	// DefaultMaxArgs is the per-stage argument limit when none is configured.
	DefaultMaxArgs = 40
	// DefaultMaxStages is the pipeline length limit when none is configured.
	DefaultMaxStages = 64
)

// Parser turns a line into a command chain.
//
// The grammar is a flat token-driven state machine over the stage being
// filled:
//
//	line    := "!!" | chain ["&"]
//	chain   := stage { "|" stage }
//	stage   := { word | "<" word | ">" word }
//
// A pipe detaches the stage built so far and links it as the upstream of a
// new, empty head, so the last command on the line ends up at the head.
type Parser struct {
	MaxArgs   int
	MaxStages int
}

// NewParser creates a parser with the given limits, values < 1 fall back to
// the defaults.
func NewParser(maxArgs, maxStages int) *Parser {
	if maxArgs < 1 {
		maxArgs = DefaultMaxArgs
	}
	if maxStages < 1 {
		maxStages = DefaultMaxStages
	}
	return &Parser{MaxArgs: maxArgs, MaxStages: maxStages}
}

// Parse parses a single line.
//
// A line consisting of exactly "!!" returns a Line with RepeatHistory set and
// no chain; the caller is expected to parse the remembered line instead.
func (p *Parser) Parse(line string) (*Line, error) {
	lx := NewLexer(line)

	tok := lx.Next()
	if tok.Kind == TokenHistory {
		if next := lx.Next(); next.Kind != TokenEOF {
			return nil, syntaxError(next)
		}
		return &Line{RepeatHistory: true}, nil
	}

	head := &Command{}
	stages := 1

	for ; tok.Kind != TokenEOF; tok = lx.Next() {
		switch tok.Kind {
		case TokenWord:
			if len(head.Args) >= p.MaxArgs {
				return nil, &ParseError{Kind: ErrTooManyArguments, Pos: tok.Pos, Near: tok.Text}
			}
			head.Args = append(head.Args, tok.Text)

		case TokenRedirectIn, TokenRedirectOut:
			path := lx.Next()
			if path.Kind != TokenWord {
				return nil, syntaxError(path)
			}
			if err := applyRedirect(head, tok, path.Text); err != nil {
				return nil, err
			}

		case TokenPipe:
			if head.IsEmpty() || head.RedirectOut != "" {
				return nil, syntaxError(tok)
			}
			if stages >= p.MaxStages {
				return nil, &ParseError{Kind: ErrTooManyStages, Pos: tok.Pos, Near: tok.String()}
			}
			head = &Command{Upstream: head}
			stages++

		case TokenAmpersand:
			head.Background = true
			if next := lx.Next(); next.Kind != TokenEOF {
				return nil, syntaxError(next)
			}
			// Ampersand consumed the terminating EOF.
			return finish(head)

		default:
			return nil, syntaxError(tok)
		}
	}

	return finish(head)
}

func applyRedirect(cmd *Command, op Token, path string) error {
	switch op.Kind {
	case TokenRedirectIn:
		// A pipe sink already has its input.
		if cmd.RedirectIn != "" || cmd.Upstream != nil {
			return syntaxError(op)
		}
		cmd.RedirectIn = path
	case TokenRedirectOut:
		if cmd.RedirectOut != "" {
			return syntaxError(op)
		}
		cmd.RedirectOut = path
	}
	return nil
}

func finish(head *Command) (*Line, error) {
	if head.IsEmpty() {
		return nil, &ParseError{Kind: ErrEmptyInput}
	}
	return &Line{Head: head}, nil
}
