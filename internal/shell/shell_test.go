package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/vfsh/internal/history"
	"github.com/agentic-research/vfsh/internal/vfs"
)

const docsXML = `<vfs name="scenario">
  <dir name="docs">
    <file name="a.txt">hello</file>
    <file name="lines.txt">Zmlyc3QKc2Vjb25kCnRoaXJk</file>
    <dir name="empty"/>
  </dir>
</vfs>`

func envMap(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func newTestShell(t *testing.T, env map[string]string) *Shell {
	t.Helper()
	tree, err := vfs.Load([]byte(docsXML), vfs.FormatXML)
	require.NoError(t, err)
	return New(vfs.NewSession(tree), Options{LookupEnv: envMap(env)})
}

func run(t *testing.T, s *Shell, line string) string {
	t.Helper()
	out, err := s.Execute(line)
	require.NoError(t, err, line)
	return out
}

func TestDocsScenario(t *testing.T) {
	s := newTestShell(t, nil)

	assert.Equal(t, "", run(t, s, "cd docs"))
	assert.Equal(t, "/docs\n", run(t, s, "pwd"))
	assert.Equal(t, "hello\n", run(t, s, "cat a.txt"))
	assert.Equal(t, "", run(t, s, "cd .."))
	assert.Equal(t, "/\n", run(t, s, "pwd"))
}

func TestMkdirScenario(t *testing.T) {
	tree, err := vfs.Load([]byte(`<vfs/>`), vfs.FormatXML)
	require.NoError(t, err)
	s := New(vfs.NewSession(tree), Options{})

	assert.Equal(t, "", run(t, s, "mkdir /x/y/z"))
	assert.Equal(t, "x\n", run(t, s, "ls"))
	assert.Equal(t, "z\n", run(t, s, "ls /x/y"))
	assert.Equal(t, "", run(t, s, "ls /x/y/z"))

	out := run(t, s, "mkdir /x/y/z")
	assert.True(t, IsError(out))
	assert.Contains(t, out, "already exists")
}

func TestUnboundVariableFailsWholeLine(t *testing.T) {
	s := newTestShell(t, map[string]string{})

	out := run(t, s, "echo Value=$HOME")
	assert.Equal(t, "error: environment variable $HOME is not set\n", out)
	assert.NotContains(t, out, "Value=")

	// Nothing after the unbound reference runs either.
	out = run(t, s, "mkdir /made-$NOPE")
	assert.True(t, IsError(out))
	assert.True(t, IsError(run(t, s, "ls /made-")))
}

func TestUnboundVariableWithProcessEnv(t *testing.T) {
	t.Setenv("VFSH_TEST_SET", "yes")
	tree, err := vfs.Load([]byte(docsXML), vfs.FormatXML)
	require.NoError(t, err)
	s := New(vfs.NewSession(tree), Options{})

	assert.Equal(t, "yes\n", run(t, s, "echo $VFSH_TEST_SET"))
	assert.True(t, IsError(run(t, s, "echo ${VFSH_TEST_SURELY_UNSET_VARIABLE}")))
}

func TestVariableExpansion(t *testing.T) {
	s := newTestShell(t, map[string]string{
		"DIR":   "docs",
		"FILE":  "a.txt",
		"EMPTY": "",
	})

	assert.Equal(t, "", run(t, s, "cd $DIR"))
	assert.Equal(t, "/docs\n", run(t, s, "pwd"))
	assert.Equal(t, "hello\n", run(t, s, "cat ${FILE}"))
	assert.Equal(t, "x-a.txt-y\n", run(t, s, "echo x-${FILE}-y"))
	// A line that expands to nothing is a silent no-op.
	assert.Equal(t, "", run(t, s, "$EMPTY"))
}

func TestUnknownCommand(t *testing.T) {
	s := newTestShell(t, nil)
	assert.Equal(t, "error: unknown command 'frobnicate'\n", run(t, s, "frobnicate now"))
}

func TestBlankLines(t *testing.T) {
	s := newTestShell(t, nil)
	assert.Equal(t, "", run(t, s, ""))
	assert.Equal(t, "", run(t, s, "   \t  "))
}

func TestExit(t *testing.T) {
	s := newTestShell(t, nil)

	out, err := s.Execute("exit")
	assert.ErrorIs(t, err, ErrExit)
	assert.Empty(t, out)

	out, err = s.Execute("  exit  ")
	assert.ErrorIs(t, err, ErrExit)
	assert.Empty(t, out)

	out, err = s.Execute("exit now")
	require.NoError(t, err)
	assert.True(t, IsError(out))
	assert.Contains(t, out, "usage: exit")
}

func TestArity(t *testing.T) {
	tests := []string{
		"ls a b",
		"cd a b",
		"pwd x",
		"cat",
		"cat a b",
		"tac",
		"rev a b",
		"mkdir",
		"mkdir a b",
		"cp a",
		"cp a b c",
		"vfs-info x",
		"help me",
		"history x",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			s := newTestShell(t, nil)
			out := run(t, s, line)
			assert.True(t, IsError(out), out)
			assert.Contains(t, out, "wrong number of arguments")
			assert.Equal(t, "/", s.Pwd())
		})
	}
}

func TestCdDefaultsToRoot(t *testing.T) {
	s := newTestShell(t, nil)
	run(t, s, "cd /docs/empty")
	assert.Equal(t, "", run(t, s, "cd"))
	assert.Equal(t, "/", s.Pwd())
}

func TestCdErrors(t *testing.T) {
	s := newTestShell(t, nil)

	assert.Equal(t, "error: cd: /missing: no such file or directory\n", run(t, s, "cd missing"))
	assert.Equal(t, "error: cd: /docs/a.txt: not a directory\n", run(t, s, "cd docs/a.txt"))
	assert.Equal(t, "/", s.Pwd())
}

func TestLsMissingKeepsCwd(t *testing.T) {
	s := newTestShell(t, nil)
	run(t, s, "cd docs")

	out := run(t, s, "ls /nope")
	assert.True(t, IsError(out))
	assert.Equal(t, "/docs", s.Pwd())

	assert.Equal(t, "a.txt\nempty\nlines.txt\n", run(t, s, "ls"))
	assert.Equal(t, "docs\n", run(t, s, "ls .."))
	assert.Equal(t, "/docs", s.Pwd())
}

func TestCatTacRev(t *testing.T) {
	s := newTestShell(t, nil)
	run(t, s, "cd docs")

	assert.Equal(t, "first\nsecond\nthird\n", run(t, s, "cat lines.txt"))
	assert.Equal(t, "third\nsecond\nfirst\n", run(t, s, "tac lines.txt"))
	assert.Equal(t, "tsrif\ndnoces\ndriht\n", run(t, s, "rev lines.txt"))
	assert.Equal(t, "olleh\n", run(t, s, "rev a.txt"))

	assert.True(t, IsError(run(t, s, "cat empty")))
	assert.True(t, IsError(run(t, s, "tac nope")))
	assert.True(t, IsError(run(t, s, "rev /")))
}

func TestCatEmptyFile(t *testing.T) {
	tree, err := vfs.Load([]byte(`<vfs><file name="e"/></vfs>`), vfs.FormatXML)
	require.NoError(t, err)
	s := New(vfs.NewSession(tree), Options{})

	assert.Equal(t, "", run(t, s, "cat e"))
	assert.Equal(t, "", run(t, s, "tac e"))
	assert.Equal(t, "", run(t, s, "rev e"))
}

func TestRevUnicode(t *testing.T) {
	tree, err := vfs.Load([]byte(`<vfs><file name="u">привет</file></vfs>`), vfs.FormatXML)
	require.NoError(t, err)
	s := New(vfs.NewSession(tree), Options{})

	assert.Equal(t, "тевирп\n", run(t, s, "rev u"))
}

func TestCp(t *testing.T) {
	s := newTestShell(t, nil)

	assert.Equal(t, "", run(t, s, "cp /docs/a.txt /docs/empty"))
	assert.Equal(t, "hello\n", run(t, s, "cat /docs/empty/a.txt"))
	assert.Equal(t, "", run(t, s, "cp /docs/empty/a.txt /b.txt"))
	assert.Equal(t, "hello\n", run(t, s, "cat /b.txt"))
	assert.Equal(t, "hello\n", run(t, s, "cat /docs/a.txt"))

	assert.Contains(t, run(t, s, "cp /docs/a.txt /b.txt"), "already exists")
	assert.Contains(t, run(t, s, "cp /docs /c"), "not a file")
	assert.Contains(t, run(t, s, "cp /missing /c"), "no such file or directory")
	assert.Contains(t, run(t, s, "cp /b.txt /no/parent/c"), "not a directory")
}

func TestEcho(t *testing.T) {
	s := newTestShell(t, map[string]string{"NAME": "world"})

	assert.Equal(t, "\n", run(t, s, "echo"))
	assert.Equal(t, "hello world\n", run(t, s, "echo   hello    world"))
	assert.Equal(t, "a\nb\tc\\d\n", run(t, s, `echo a\nb\tc\\d`))
	assert.Equal(t, "hello world\n", run(t, s, "echo hello $NAME"))
	assert.Equal(t, "cost $NAME\n", run(t, s, `echo cost \$NAME`))
	assert.Equal(t, "cost ${NAME}\n", run(t, s, `echo cost \${NAME}`))
	assert.Equal(t, "\\world\n", run(t, s, `echo \\$NAME`))
	assert.Equal(t, "$ 5\n", run(t, s, "echo $ 5"))
	assert.Equal(t, `\q`+"\n", run(t, s, `echo \q`))
}

func TestEchoSubstitutesOnce(t *testing.T) {
	s := newTestShell(t, map[string]string{
		"A": "$B",
		"P": `C:\new`,
		"S": "two  words",
	})

	// Values are output verbatim: no second expansion, no escapes.
	assert.Equal(t, "$B\n", run(t, s, "echo $A"))
	assert.Equal(t, `C:\new`+"\n", run(t, s, "echo $P"))
	assert.Equal(t, `C:\new`+"\tx\n", run(t, s, `echo ${P}\tx`))
	assert.Equal(t, "[two words]\n", run(t, s, "echo [$S]"))

	// Other commands see the same expansion.
	assert.Equal(t, "", run(t, s, "mkdir /$A"))
	assert.Equal(t, "$B\ndocs\n", run(t, s, "ls /"))
}

func TestVFSInfo(t *testing.T) {
	s := newTestShell(t, nil)
	want := "VFS Name: scenario\nSHA-256: " + vfs.Digest([]byte(docsXML)) + "\n"
	assert.Equal(t, want, run(t, s, "vfs-info"))
}

func TestHelpListsEveryCommand(t *testing.T) {
	s := newTestShell(t, nil)
	out := run(t, s, "help")
	for _, name := range []string{"ls", "cd", "pwd", "cat", "tac", "rev", "mkdir", "cp", "echo", "history", "vfs-info", "help", "exit"} {
		assert.Contains(t, out, "  "+name, name)
	}
}

func TestHistory(t *testing.T) {
	store, err := history.Open(history.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tree, err := vfs.Load([]byte(docsXML), vfs.FormatXML)
	require.NoError(t, err)
	s := New(vfs.NewSession(tree), Options{History: store, HistoryLimit: 2})

	run(t, s, "pwd")
	run(t, s, "cd nope")
	run(t, s, "   ")
	run(t, s, "ls")

	out := run(t, s, "history")
	assert.Equal(t, "    2  cd nope\n    3  ls\n", out)

	entries, err := store.List(context.Background(), s.ID(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.False(t, entries[1].OK)
	assert.Equal(t, "history", entries[3].Line)
}

func TestHistoryNumbersPerSession(t *testing.T) {
	store, err := history.Open(history.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tree, err := vfs.Load([]byte(docsXML), vfs.FormatXML)
	require.NoError(t, err)
	first := New(vfs.NewSession(tree), Options{History: store})
	second := New(vfs.NewSession(tree), Options{History: store})

	run(t, first, "pwd")
	run(t, first, "ls")
	run(t, second, "cd docs")

	assert.Equal(t, "    1  cd docs\n", run(t, second, "history"))
	assert.Equal(t, "    1  pwd\n    2  ls\n", run(t, first, "history"))
	assert.Equal(t, "    1  pwd\n    2  ls\n    3  history\n", run(t, first, "history"))
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestShell(t, nil)
	assert.Equal(t, "error: history is disabled\n", run(t, s, "history"))
}

func TestPwdIdempotent(t *testing.T) {
	s := newTestShell(t, nil)
	run(t, s, "cd /docs/empty")
	assert.Equal(t, run(t, s, "pwd"), run(t, s, "pwd"))
}

func TestExecuteScript(t *testing.T) {
	s := newTestShell(t, map[string]string{"D": "docs"})

	res := s.ExecuteScript([]string{
		"# setup",
		"",
		"cd $D",
		"   cat missing.txt  ",
		"pwd",
		"exit",
		"cd /",
	})

	assert.True(t, res.Exited)
	executed := make([]string, len(res.Steps))
	for i, st := range res.Steps {
		executed[i] = st.Line
	}
	assert.Equal(t, []string{"cd $D", "cat missing.txt", "pwd", "exit"}, executed)
	assert.Equal(t, []string{"line 4: read: /docs/missing.txt: no such file or directory"}, res.Errors)

	require.Len(t, res.Steps, 4)
	assert.Equal(t, 3, res.Steps[0].LineNo)
	assert.Equal(t, "/", res.Steps[0].Dir)
	assert.Equal(t, "/docs", res.Steps[2].Dir)
	assert.Equal(t, "/docs\n", res.Steps[2].Output)

	// The line after exit never ran.
	assert.Equal(t, "/docs", s.Pwd())
}

func TestExecuteScriptKeepsGoingAfterErrors(t *testing.T) {
	s := newTestShell(t, map[string]string{})

	res := s.ExecuteScript([]string{"echo $NOPE", "bogus", "mkdir /new", "ls /new"})

	assert.False(t, res.Exited)
	assert.Len(t, res.Steps, 4)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "line 1: environment variable $NOPE is not set", res.Errors[0])
	assert.Equal(t, "line 2: unknown command 'bogus'", res.Errors[1])
	assert.Equal(t, "", res.Steps[3].Output)
}
