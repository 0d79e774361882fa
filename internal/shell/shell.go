// Package shell is the command pipeline of vfsh. It expands environment
// references in a line, splits it into words, dispatches the first word to a
// built-in command operating on a vfs.Session, and returns display text.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentic-research/vfsh/internal/history"
	"github.com/agentic-research/vfsh/internal/vfs"
)

// History records executed lines. *history.Store implements it.
type History interface {
	Append(ctx context.Context, session, line string, ok bool) error
	List(ctx context.Context, session string, limit int) ([]history.Entry, error)
}

// Options configures a Shell. The zero value is usable.
type Options struct {
	Logger       *zap.Logger
	History      History    // nil disables the history command
	HistoryLimit int        // entries shown by history; <= 0 shows all
	LookupEnv    LookupFunc // defaults to os.LookupEnv
}

// Shell executes command lines against one session.
// It is not safe for concurrent use.
type Shell struct {
	id           string
	session      *vfs.Session
	commands     map[string]*command
	order        []string
	logger       *zap.Logger
	history      History
	historyLimit int
	lookup       LookupFunc
}

// New creates a shell over session.
func New(session *vfs.Session, opts Options) *Shell {
	id := uuid.NewString()

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	s := &Shell{
		id:           id,
		session:      session,
		commands:     make(map[string]*command),
		logger:       logger.With(zap.String("session", id)),
		history:      opts.History,
		historyLimit: opts.HistoryLimit,
		lookup:       lookup,
	}
	for _, c := range builtins() {
		s.commands[c.name] = c
		s.order = append(s.order, c.name)
	}
	return s
}

// ID returns the session id used in logs and history.
func (s *Shell) ID() string {
	return s.id
}

// Pwd returns the current working path for display.
func (s *Shell) Pwd() string {
	return s.session.Pwd()
}

// Execute runs one command line and returns its display text. Failures are
// returned as text starting with ErrorMarker. The error result is nil except
// for ErrExit, which asks the caller to stop.
func (s *Shell) Execute(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	start := time.Now()
	out, err := s.execute(line)
	ok := err == nil && !IsError(out)

	s.logger.Debug("executed",
		zap.String("line", line),
		zap.Bool("ok", ok),
		zap.Bool("exit", errors.Is(err, ErrExit)),
		zap.Duration("took", time.Since(start)),
	)
	if s.history != nil {
		if herr := s.history.Append(context.Background(), s.id, line, ok); herr != nil {
			s.logger.Warn("record history", zap.Error(herr))
		}
	}
	return out, err
}

func (s *Shell) execute(line string) (string, error) {
	words, err := expandWords(line, s.lookup)
	if err != nil {
		return failure(err), nil
	}
	if len(words) == 0 {
		return "", nil
	}

	name := words[0].String()
	cmd, ok := s.commands[name]
	if !ok {
		return failure(fmt.Errorf("unknown command '%s'", name)), nil
	}
	args := make([]string, len(words)-1)
	for i, w := range words[1:] {
		args[i] = w.String()
	}
	if err := cmd.checkArgs(args); err != nil {
		return failure(err), nil
	}

	var out string
	if cmd.runWords != nil {
		out, err = cmd.runWords(s, words[1:])
	} else {
		out, err = cmd.run(s, args)
	}
	if errors.Is(err, ErrExit) {
		return "", ErrExit
	}
	if err != nil {
		return failure(err), nil
	}
	return out, nil
}

// Step is one executed script line.
type Step struct {
	LineNo int
	Dir    string // working path before the line ran
	Line   string
	Output string
}

// ScriptResult is the outcome of ExecuteScript.
type ScriptResult struct {
	Steps  []Step
	Errors []string // "line N: message" for every line that failed
	Exited bool     // a line returned ErrExit; later lines were not run
}

// ExecuteScript feeds lines to Execute. Blank lines and lines starting with
// '#' are skipped. A failing line is recorded and the script goes on; a line
// that exits stops it.
func (s *Shell) ExecuteScript(lines []string) ScriptResult {
	var res ScriptResult
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		dir := s.Pwd()
		out, err := s.Execute(line)
		res.Steps = append(res.Steps, Step{LineNo: i + 1, Dir: dir, Line: line, Output: out})
		if errors.Is(err, ErrExit) {
			res.Exited = true
			break
		}
		if IsError(out) {
			msg := fmt.Sprintf("line %d: %s", i+1, strings.TrimSpace(strings.TrimPrefix(out, ErrorMarker)))
			res.Errors = append(res.Errors, msg)
			s.logger.Warn("script line failed", zap.Int("line", i+1), zap.String("error", msg))
		}
	}
	return res
}
