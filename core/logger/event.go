package logger

// EventType identifies what happened in a command cycle.
type EventType string

const (
	// EventLine is recorded for every non-empty line read.
	EventLine EventType = "line"
	// EventHistory is recorded when "!!" replays the cached line.
	EventHistory EventType = "history"
	// EventParseError is recorded when a line is rejected by the parser.
	EventParseError EventType = "parse_error"
	// EventLaunch is recorded once per started process.
	EventLaunch EventType = "launch"
	// EventProcessError is recorded for every stage that was reported and
	// skipped, and for failures that abandoned the cycle.
	EventProcessError EventType = "process_error"
	// EventExit is recorded when a cycle finishes.
	EventExit EventType = "exit"
	// EventReap is recorded when a finished child is collected.
	EventReap EventType = "reap"
)

// Event is a single entry in the event log.
type Event struct {
	TimestampMicros int64     `json:"timestamp_micros"`
	SessionID       string    `json:"session_id,omitempty"`
	Type            EventType `json:"type"`

	Line string   `json:"line,omitempty"`
	Args []string `json:"args,omitempty"`
	// Kind is the error class for parse and process errors.
	Kind   string `json:"kind,omitempty"`
	PID    int    `json:"pid,omitempty"`
	PIDs   []int  `json:"pids,omitempty"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}
