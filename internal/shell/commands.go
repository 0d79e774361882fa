package shell

import (
	"context"
	"fmt"
	"strings"
)

// handler runs a command whose argument count has already been checked.
type handler func(s *Shell, args []string) (string, error)

// wordHandler is a handler that needs to know which parts of its arguments
// came from variable values.
type wordHandler func(s *Shell, args []word) (string, error)

type command struct {
	name     string
	usage    string
	summary  string
	minArgs  int
	maxArgs  int // -1 means unbounded
	run      handler
	runWords wordHandler
}

func (c *command) checkArgs(args []string) error {
	if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
		return &UsageError{Command: c.name, Usage: c.usage}
	}
	return nil
}

// builtins is the fixed command table, in help order.
func builtins() []*command {
	return []*command{
		{name: "ls", usage: "ls [path]", summary: "list a directory (default: current)", maxArgs: 1, run: runLs},
		{name: "cd", usage: "cd [path]", summary: "change directory (default: /); supports . and ..", maxArgs: 1, run: runCd},
		{name: "pwd", usage: "pwd", summary: "print the current directory", run: runPwd},
		{name: "cat", usage: "cat <file>", summary: "print a file", minArgs: 1, maxArgs: 1, run: runCat},
		{name: "tac", usage: "tac <file>", summary: "print a file with lines in reverse order", minArgs: 1, maxArgs: 1, run: runTac},
		{name: "rev", usage: "rev <file>", summary: "print a file with each line reversed", minArgs: 1, maxArgs: 1, run: runRev},
		{name: "mkdir", usage: "mkdir <path>", summary: "create a directory and missing parents", minArgs: 1, maxArgs: 1, run: runMkdir},
		{name: "cp", usage: "cp <source> <destination>", summary: "copy a file", minArgs: 2, maxArgs: 2, run: runCp},
		{name: "echo", usage: "echo [text...]", summary: `print text; understands \n \t \\ \$ and $VAR`, maxArgs: -1, runWords: runEcho},
		{name: "history", usage: "history", summary: "list commands run in this session", run: runHistory},
		{name: "vfs-info", usage: "vfs-info", summary: "show the VFS name and SHA-256 of its source", run: runVFSInfo},
		{name: "help", usage: "help", summary: "show this help", run: runHelp},
		{name: "exit", usage: "exit", summary: "leave the shell", run: runExit},
	}
}

func runLs(s *Shell, args []string) (string, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	names, err := s.session.Ls(path)
	if err != nil {
		return "", err
	}
	return lines(names), nil
}

func runCd(s *Shell, args []string) (string, error) {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}
	return "", s.session.Cd(path)
}

func runPwd(s *Shell, _ []string) (string, error) {
	return s.session.Pwd() + "\n", nil
}

func runCat(s *Shell, args []string) (string, error) {
	text, err := s.session.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", nil
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text, nil
}

func runTac(s *Shell, args []string) (string, error) {
	text, err := s.session.ReadFile(args[0])
	if err != nil || text == "" {
		return "", err
	}
	ls := splitLines(text)
	for i, j := 0, len(ls)-1; i < j; i, j = i+1, j-1 {
		ls[i], ls[j] = ls[j], ls[i]
	}
	return lines(ls), nil
}

func runRev(s *Shell, args []string) (string, error) {
	text, err := s.session.ReadFile(args[0])
	if err != nil || text == "" {
		return "", err
	}
	ls := splitLines(text)
	for i, l := range ls {
		r := []rune(l)
		for a, b := 0, len(r)-1; a < b; a, b = a+1, b-1 {
			r[a], r[b] = r[b], r[a]
		}
		ls[i] = string(r)
	}
	return lines(ls), nil
}

func runMkdir(s *Shell, args []string) (string, error) {
	return "", s.session.Mkdir(args[0])
}

func runCp(s *Shell, args []string) (string, error) {
	return "", s.session.Cp(args[0], args[1])
}

// runEcho joins its arguments with single spaces. Escapes are only
// interpreted in text typed on the line, never in substituted values.
func runEcho(_ *Shell, args []word) (string, error) {
	var b strings.Builder
	for i, w := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		for _, p := range w {
			if p.substituted {
				b.WriteString(p.text)
			} else {
				b.WriteString(unescapeEcho(p.text))
			}
		}
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func runHistory(s *Shell, _ []string) (string, error) {
	if s.history == nil {
		return "", fmt.Errorf("history is disabled")
	}
	entries, err := s.history.List(context.Background(), s.id, s.historyLimit)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%5d  %s\n", e.Seq, e.Line)
	}
	return b.String(), nil
}

func runVFSInfo(s *Shell, _ []string) (string, error) {
	return s.session.Tree().Info(), nil
}

func runHelp(s *Shell, _ []string) (string, error) {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range s.order {
		c := s.commands[name]
		fmt.Fprintf(&b, "  %-26s %s\n", c.usage, c.summary)
	}
	return b.String(), nil
}

func runExit(_ *Shell, _ []string) (string, error) {
	return "", ErrExit
}

// lines joins items one per line; no items gives "".
func lines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
