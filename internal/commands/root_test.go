package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

func TestRootCommand_Configured(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t, &fakeClient{}).deps)
	if cmd.Use != "tobchat [question]" {
		t.Errorf("Use = %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("descriptions should not be empty")
	}

	want := []string{"ask", "chat", "serve", "config", "health"}
	for _, name := range want {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("subcommand %q missing", name)
		}
	}
	for _, flag := range []string{"server", "verbose"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	for _, arg := range []string{"-v", "--version"} {
		t.Run(arg, func(t *testing.T) {
			env := newTestEnv(t, &fakeClient{})
			if err := env.run(arg); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.HasPrefix(env.stdout.String(), "tobchat "+Version) {
				t.Errorf("stdout = %q", env.stdout.String())
			}
		})
	}
}

func TestRootCommand_NoQuestionShowsHelp(t *testing.T) {
	env := newTestEnv(t, &fakeClient{})
	if err := env.run(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Usage:") {
		t.Errorf("expected help output, got %q", env.stdout.String())
	}
	if env.client.gotMessages != nil {
		t.Error("no request should be sent without a question")
	}
}

func TestRootCommand_AsksPositionalQuestion(t *testing.T) {
	env := newTestEnv(t, &fakeClient{reply: "We offer consulting."})
	if err := env.run("What services do you offer?"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := env.stdout.String(); got != "We offer consulting.\n" {
		t.Errorf("stdout = %q", got)
	}
	if len(env.client.gotMessages) != 1 || env.client.gotMessages[0].Role != models.RoleUser {
		t.Errorf("messages = %+v", env.client.gotMessages)
	}
}

func TestRootCommand_ServerFlag(t *testing.T) {
	env := newTestEnv(t, &fakeClient{reply: "ok"})
	if err := env.run("ask", "--server", "http://chat.internal:9000", "hello"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if env.client.gotCfg.ServerURL != "http://chat.internal:9000" {
		t.Errorf("ServerURL = %q", env.client.gotCfg.ServerURL)
	}
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	env := newTestEnv(t, &fakeClient{})
	err := env.run("ask")
	if !errors.Is(err, apierrors.ErrInvalidQuery) {
		t.Errorf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestReadQuestion(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "q.md")
	if err := os.WriteFile(file, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		file   string
		args   []string
		stdin  string
		piped  bool
		want   string
		wantOK bool
		err    bool
	}{
		{name: "file wins", file: file, args: []string{"arg"}, stdin: "in", piped: true, want: "from file", wantOK: true},
		{name: "positional before stdin", args: []string{"arg"}, stdin: "in", piped: true, want: "arg", wantOK: true},
		{name: "piped stdin", stdin: "from stdin\n", piped: true, want: "from stdin\n", wantOK: true},
		{name: "blank stdin", stdin: "  \n", piped: true},
		{name: "terminal stdin ignored", stdin: "ignored"},
		{name: "missing file", file: filepath.Join(dir, "nope"), err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeClient{})
			env.deps.Stdin = strings.NewReader(tt.stdin)
			env.deps.StdinIsPipe = func() bool { return tt.piped }

			got, ok, err := readQuestion(env.deps, &rootOptions{file: tt.file}, tt.args)
			if (err != nil) != tt.err {
				t.Fatalf("error = %v, want error %v", err, tt.err)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("readQuestion() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
