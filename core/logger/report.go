package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e *Event)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			return err
		}

		handler(&event)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries"`

	Lines          int          `json:"lines"`
	HistoryRepeats int          `json:"history_repeats"`
	ParseErrors    StrCounter   `json:"parse_errors"`
	Programs       StrCounter   `json:"programs"`
	ProcessErrors  *PathCounter `json:"process_errors"`
	ExitStatuses   StrCounter   `json:"exit_statuses"`
	Reaped         int          `json:"reaped"`
	ReapErrors     StrCounter   `json:"reap_errors"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		ProcessErrors: NewPathCounter("kind", "error"),
	}
}

func (r *Report) Update(e *Event) {
	r.LogEntries++

	switch e.Type {
	case EventLine:
		r.Lines++
	case EventHistory:
		r.HistoryRepeats++
	case EventParseError:
		r.ParseErrors.Increment(e.Kind)
	case EventLaunch:
		if len(e.Args) > 0 {
			r.Programs.Increment(e.Args[0])
		}
	case EventProcessError:
		if r.ProcessErrors == nil {
			r.ProcessErrors = NewPathCounter("kind", "error")
		}
		r.ProcessErrors.Increment(e.Kind, e.Error)
	case EventExit:
		r.ExitStatuses.Increment(fmt.Sprintf("%d", e.Status))
	case EventReap:
		r.Reaped++
		if e.Error != "" {
			r.ReapErrors.Increment(e.Error)
		}
	default:
		r.InvalidEntries.Increment(string(e.Type))
	}
}

// SessionReport groups the commands run in each session.
type SessionReport struct {
	// Map of sessionID -> session
	sessions map[string]*Session
}

// Session summarizes a single run of the shell.
type Session struct {
	LogEntries int      `json:"log_entries"`
	Commands   []string `json:"commands"`
	Failures   int      `json:"failures"`
}

func (s *Session) Update(e *Event) {
	s.LogEntries++

	switch e.Type {
	case EventExit:
		s.Commands = append(s.Commands, e.Line)
		if e.Status != 0 {
			s.Failures++
		}
	case EventParseError:
		s.Failures++
	}
}

func (s *SessionReport) init() {
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
}

// MarshalJSON implemnts custom JSON marshaler.
func (s *SessionReport) MarshalJSON() ([]byte, error) {
	s.init()

	return json.Marshal(s.sessions)
}

func (s *SessionReport) Update(e *Event) {
	s.init()

	if e.SessionID == "" {
		return
	}
	session, ok := s.sessions[e.SessionID]
	if !ok {
		session = &Session{}
		s.sessions[e.SessionID] = session
	}

	session.Update(e)
}

// Get returns the summary for a session, nil if it never logged.
func (s *SessionReport) Get(sessionID string) *Session {
	s.init()
	return s.sessions[sessionID]
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of strings seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
