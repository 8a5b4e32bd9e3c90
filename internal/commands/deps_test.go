package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/tobchat/internal/api"
	"github.com/diogo/tobchat/internal/config"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/tui"
	"github.com/diogo/tobchat/internal/widget"
)

// fakeClient streams a canned reply in fixed-size chunks
type fakeClient struct {
	reply     string
	reason    api.Reason
	err       error
	healthErr error
	chunk     int

	gotCfg      config.Config
	gotMessages []models.Message
}

func (f *fakeClient) Stream(ctx context.Context, messages []models.Message, onUpdate api.UpdateFunc) (*api.Reply, error) {
	f.gotMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	chunk := f.chunk
	if chunk <= 0 {
		chunk = 4
	}
	for i := chunk; i < len(f.reply)+chunk; i += chunk {
		end := i
		if end > len(f.reply) {
			end = len(f.reply)
		}
		onUpdate(f.reply[:end])
	}
	reason := f.reason
	if reason == "" {
		reason = api.ReasonDone
	}
	return &api.Reply{Content: f.reply, Reason: reason, Events: 1}, nil
}

func (f *fakeClient) Health(ctx context.Context) (*api.HealthStatus, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &api.HealthStatus{Status: "ok", Name: models.ChatbotName, Version: models.ChatbotVersion, Provider: "mock"}, nil
}

func (f *fakeClient) SessionID() string { return "session-test" }

// fakeTUI records the widget it was asked to run
type fakeTUI struct {
	widget *widget.Widget
	opts   tui.Options
	err    error
}

func (f *fakeTUI) RunChat(w *widget.Widget, opts tui.Options) error {
	f.widget = w
	f.opts = opts
	return f.err
}

type testEnv struct {
	deps   *Dependencies
	client *fakeClient
	tui    *fakeTUI
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	copied []string
}

// newTestEnv returns Dependencies wired to fakes. HOME points at a temp dir
// so nothing touches the real config.
func newTestEnv(t *testing.T, client *fakeClient) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvServerURL, "")

	env := &testEnv{
		client: client,
		tui:    &fakeTUI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.deps = &Dependencies{
		Stdin:  strings.NewReader(""),
		Stdout: env.stdout,
		Stderr: env.stderr,
		NewClient: func(cfg config.Config, _ zerolog.Logger) (ChatClient, error) {
			client.gotCfg = cfg
			return client, nil
		},
		LoadConfig:      func() (config.Config, error) { return config.DefaultConfig(), nil },
		LoadAgentConfig: func() (config.AgentConfig, error) { return config.DefaultAgentConfig(), nil },
		TUI:             env.tui,
		IsTTY:           func() bool { return false },
		StdinIsPipe:     func() bool { return false },
		CopyToClipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	}
	return env
}

// run executes the command tree with args
func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}
