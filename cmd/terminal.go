package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/agentic-research/vfsh/internal/shell"
)

// terminal renders prompts and command output on a line-oriented stream.
type terminal struct {
	out    io.Writer
	user   string
	host   string
	prompt *color.Color
	errc   *color.Color
}

func newTerminal(out io.Writer, colorize bool) *terminal {
	t := &terminal{
		out:    out,
		user:   currentUser(),
		host:   hostname(),
		prompt: color.New(color.FgGreen, color.Bold),
		errc:   color.New(color.FgRed),
	}
	if colorize && writesToTerminal(out) {
		t.prompt.EnableColor()
		t.errc.EnableColor()
	} else {
		t.prompt.DisableColor()
		t.errc.DisableColor()
	}
	return t
}

func (t *terminal) banner() {
	fmt.Fprint(t.out, "vfsh: type 'help' for available commands.\n")
}

func (t *terminal) promptText(dir string) string {
	return fmt.Sprintf("%s@%s:%s$ ", t.user, t.host, dir)
}

func (t *terminal) showPrompt(dir string) {
	t.prompt.Fprint(t.out, t.promptText(dir))
}

func (t *terminal) showOutput(out string) {
	if out == "" {
		return
	}
	if shell.IsError(out) {
		t.errc.Fprint(t.out, out)
		return
	}
	fmt.Fprint(t.out, out)
}

// runScript plays a startup script, echoing each executed line after the
// prompt it ran under. It reports whether the script asked to exit.
func (t *terminal) runScript(sh *shell.Shell, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		t.errc.Fprintf(t.out, "script error: %v\n", err)
		return false
	}
	if !utf8.Valid(data) {
		t.errc.Fprintf(t.out, "script error: %s is not valid UTF-8\n", path)
		return false
	}

	res := sh.ExecuteScript(strings.Split(string(data), "\n"))
	for _, st := range res.Steps {
		t.showPrompt(st.Dir)
		fmt.Fprintln(t.out, st.Line)
		t.showOutput(st.Output)
	}
	for _, msg := range res.Errors {
		t.errc.Fprintf(t.out, "script error: %s\n", msg)
	}
	return res.Exited
}

// repl reads lines from in until exit or end of input.
func (t *terminal) repl(sh *shell.Shell, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		t.showPrompt(sh.Pwd())
		if !scanner.Scan() {
			fmt.Fprintln(t.out)
			return scanner.Err()
		}

		out, err := sh.Execute(scanner.Text())
		if errors.Is(err, shell.ErrExit) {
			return nil
		}
		t.showOutput(out)
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "user"
}

func hostname() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "localhost"
}

func writesToTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(int(f.Fd()))
}
