package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(e *Event) error

// Logger captures command cycle events so sessions can be reviewed after the
// fact.
type Logger struct {
	Record LogRecorder

	// Now overrides the event clock, nil uses time.Now.
	Now func() time.Time
}

// NewJSONLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(e *Event) error {
			entry, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewNopLogger creates a Logger that drops every event.
func NewNopLogger() *Logger {
	return &Logger{
		Record: func(*Event) error { return nil },
	}
}

func (l *Logger) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func (l *Logger) record(sessionID string, e *Event) error {
	e.TimestampMicros = l.now().UnixMicro()
	e.SessionID = sessionID
	return l.Record(e)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString()}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID stamped on every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record stamps the event with the time and session then stores it.
func (l *SessionLogger) Record(e *Event) error {
	return l.record(l.sessionID, e)
}

func (l *SessionLogger) RecordLine(line string) error {
	return l.Record(&Event{Type: EventLine, Line: line})
}

func (l *SessionLogger) RecordHistory(line string) error {
	return l.Record(&Event{Type: EventHistory, Line: line})
}

func (l *SessionLogger) RecordParseError(line, kind string, err error) error {
	return l.Record(&Event{Type: EventParseError, Line: line, Kind: kind, Error: errString(err)})
}

func (l *SessionLogger) RecordLaunch(pid int, args []string) error {
	return l.Record(&Event{Type: EventLaunch, PID: pid, Args: args})
}

func (l *SessionLogger) RecordProcessError(kind string, err error) error {
	return l.Record(&Event{Type: EventProcessError, Kind: kind, Error: errString(err)})
}

// RecordExit logs the end of a cycle with the head's status and every
// process it started.
func (l *SessionLogger) RecordExit(line string, status int, pids []int) error {
	return l.Record(&Event{Type: EventExit, Line: line, Status: status, PIDs: pids})
}

func (l *SessionLogger) RecordReap(pid int, args []string, status int, err error) error {
	return l.Record(&Event{Type: EventReap, PID: pid, Args: args, Status: status, Error: errString(err)})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
