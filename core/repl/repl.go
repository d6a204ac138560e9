// Package repl reads lines from the user and runs them as command chains.
package repl

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/osh/core/config"
	"github.com/josephlewis42/osh/core/logger"
	"github.com/josephlewis42/osh/core/proc"
	"github.com/josephlewis42/osh/core/shell"
	"github.com/mattn/go-isatty"
)

const (
	Prompt   = "osh> "
	Farewell = "Ciao!"
	// ExitCommand quits the shell when it is the whole line.
	ExitCommand = "exit"

	// StatusParseFailed is the status left behind by a rejected line.
	StatusParseFailed = 2
)

// LineSource supplies input lines. It is satisfied by *readline.Instance.
type LineSource interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// Shell runs the read, parse, execute cycle.
type Shell struct {
	Lines    LineSource
	Out      io.Writer
	Parser   *shell.Parser
	Launcher *proc.Launcher
	Events   *logger.SessionLogger
	Colors   *ColorPrinter
	History  History
	// Log receives errors from the shell itself, not from commands.
	Log *log.Logger
	// PromptOut receives the prompt before each read when the line source
	// does not draw one. Readline only draws it on a terminal.
	PromptOut io.Writer

	// LastStatus is the status of the most recent cycle.
	LastStatus int
}

// NewShell creates a shell reading from the terminal with the limits and
// colors from cfg.
func NewShell(cfg *config.Configuration, events *logger.SessionLogger) (*Shell, error) {
	isTerminal := func() bool {
		return isatty.IsTerminal(os.Stdout.Fd())
	}

	rlCfg := &readline.Config{
		Prompt:         Prompt,
		Stdin:          readline.NewCancelableStdin(os.Stdin),
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		FuncIsTerminal: isTerminal,
	}
	if err := rlCfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, err
	}

	s := New(rl, rl, cfg, events)
	s.Colors.IsTerminal = isTerminal
	if !isTerminal() {
		s.PromptOut = os.Stdout
	}
	return s, nil
}

// New creates a shell around an existing line source and output.
func New(lines LineSource, out io.Writer, cfg *config.Configuration, events *logger.SessionLogger) *Shell {
	if events == nil {
		events = logger.NewNopLogger().NewSession()
	}

	return &Shell{
		Lines:    lines,
		Out:      out,
		Parser:   shell.NewParser(cfg.MaxArgs, cfg.MaxStages),
		Launcher: proc.NewLauncher(),
		Events:   events,
		Colors:   &ColorPrinter{Mode: cfg.Color},
		Log:      log.New(os.Stderr, "[osh] ", 0),
	}
}

// Run prompts for lines until exit or end of input.
func (s *Shell) Run() int {
	for {
		s.Lines.SetPrompt(Prompt)
		if s.PromptOut != nil {
			fmt.Fprint(s.PromptOut, Prompt)
		}
		line, err := s.Lines.Readline()

		switch {
		case err == io.EOF:
			fmt.Fprintln(s.Out, Farewell)
			return 0
		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue
		case err != nil:
			s.Log.Printf("Error readline: %v", err)
			continue
		case len(line) == 0:
			continue // empty line
		}

		if s.RunLine(line) {
			return 0
		}
	}
}

// RunLine runs one command cycle and reports whether the shell should quit.
// Children that finished in the meantime are reaped afterwards, whatever the
// outcome of the line.
func (s *Shell) RunLine(line string) (quit bool) {
	defer s.reap()

	if line == ExitCommand {
		fmt.Fprintln(s.Out, Farewell)
		return true
	}
	s.logEvent(s.Events.RecordLine(line))

	parsed, err := s.Parser.Parse(line)
	if err != nil {
		s.parseFailed(line, err)
		return false
	}

	if parsed.RepeatHistory {
		line, parsed, err = s.recall()
		if err != nil {
			s.historyFailed(line, err)
			return false
		}
	} else {
		s.History.Remember(line)
	}

	s.execute(line, parsed.Head)
	return false
}

// recall reparses the cached line after echoing it.
func (s *Shell) recall() (string, *shell.Line, error) {
	last, ok := s.History.Last()
	if !ok {
		return "", nil, ErrNoHistory
	}

	fmt.Fprintln(s.Out, s.Colors.Sprintf(attrEcho, "%s", last))
	s.logEvent(s.Events.RecordHistory(last))

	parsed, err := s.Parser.Parse(last)
	if err != nil || parsed.RepeatHistory {
		return last, nil, ErrHistoryReparse
	}
	return last, parsed, nil
}

func (s *Shell) execute(line string, head *shell.Command) {
	status, err := s.Launcher.Run(head)

	var pids []int
	for _, launched := range status.Launched {
		pids = append(pids, launched.PID)
		s.logEvent(s.Events.RecordLaunch(launched.PID, launched.Args))
	}
	for _, failure := range status.Failures {
		s.logEvent(s.Events.RecordProcessError(failure.Kind.Error(), failure))
	}
	if err != nil {
		s.logEvent(s.Events.RecordProcessError(processKind(err), err))
	}

	s.LastStatus = status.Code
	s.logEvent(s.Events.RecordExit(line, status.Code, pids))
}

func (s *Shell) parseFailed(line string, err error) {
	if errors.Is(err, shell.ErrEmptyInput) {
		s.LastStatus = 0
		return
	}

	s.LastStatus = StatusParseFailed
	s.logEvent(s.Events.RecordParseError(line, errorKind(err), err))
	s.diagnose(parseDiagnostic(err))
}

func (s *Shell) historyFailed(line string, err error) {
	s.LastStatus = StatusParseFailed
	s.logEvent(s.Events.RecordParseError(line, err.Error(), err))

	if errors.Is(err, ErrNoHistory) {
		s.diagnose(msgNoHistory)
	} else {
		s.diagnose(msgHistoryReparse)
	}
}

func (s *Shell) diagnose(msg string) {
	fmt.Fprintln(s.Out, s.Colors.Sprintf(attrError, "%s", msg))
}

// logEvent reports event log failures without interrupting the cycle.
func (s *Shell) logEvent(err error) {
	if err != nil {
		s.Log.Printf("Error recording event: %v", err)
	}
}

func (s *Shell) reap() {
	for _, r := range s.Launcher.Reap() {
		s.logEvent(s.Events.RecordReap(r.PID, r.Args, r.Status, r.Err))
	}
}

func processKind(err error) string {
	var procErr *proc.ProcessError
	if errors.As(err, &procErr) {
		return procErr.Kind.Error()
	}
	return err.Error()
}
