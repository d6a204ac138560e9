package repl

import "errors"

var (
	// ErrNoHistory is returned when "!!" is entered before any command ran.
	ErrNoHistory = errors.New("no commands in history")
	// ErrHistoryReparse is returned when the cached line no longer parses.
	ErrHistoryReparse = errors.New("error parsing history")
)

// History holds the most recent line that parsed successfully. Replays of
// it do not overwrite it.
type History struct {
	last string
	ok   bool
}

// Remember replaces the cached line.
func (h *History) Remember(line string) {
	h.last = line
	h.ok = true
}

// Last returns the cached line, false if nothing was remembered yet.
func (h *History) Last() (string, bool) {
	return h.last, h.ok
}
