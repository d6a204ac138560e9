package shell

import "strings"

// Command is one stage of a pipeline.
//
// Chains are linked from the sink back to the source: the head is the last
// command written on the line and Upstream points at the stage whose output
// it reads.
type Command struct {
	// Args holds the program name followed by its arguments.
	Args []string
	// Background is only set on the head of a chain.
	Background bool

	RedirectIn  string
	RedirectOut string

	Upstream *Command
}

// HasRedirect reports whether either redirection is set.
func (c *Command) HasRedirect() bool {
	return c.RedirectIn != "" || c.RedirectOut != ""
}

// IsEmpty reports whether the stage has neither arguments nor redirections.
func (c *Command) IsEmpty() bool {
	return len(c.Args) == 0 && !c.HasRedirect()
}

// Len returns the number of stages in the chain ending at c.
func (c *Command) Len() int {
	n := 0
	for cur := c; cur != nil; cur = cur.Upstream {
		n++
	}
	return n
}

// Stages returns the chain in execution order, source first.
func (c *Command) Stages() []*Command {
	out := make([]*Command, c.Len())
	i := len(out) - 1
	for cur := c; cur != nil; cur = cur.Upstream {
		out[i] = cur
		i--
	}
	return out
}

// String renders the chain back into the syntax it was parsed from.
func (c *Command) String() string {
	var parts []string
	for _, stage := range c.Stages() {
		parts = append(parts, stage.stageString())
	}

	out := strings.Join(parts, " | ")
	if c.Background {
		out += " &"
	}
	return out
}

func (c *Command) stageString() string {
	words := append([]string(nil), c.Args...)
	if c.RedirectIn != "" {
		words = append(words, "<", c.RedirectIn)
	}
	if c.RedirectOut != "" {
		words = append(words, ">", c.RedirectOut)
	}
	return strings.Join(words, " ")
}

// Line is the result of parsing one input line.
type Line struct {
	// Head is the outermost stage, nil when RepeatHistory is set.
	Head *Command
	// RepeatHistory is set when the line was exactly "!!".
	RepeatHistory bool
}
