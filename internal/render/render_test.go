package render

import (
	"strings"
	"testing"

	"github.com/diogo/tobchat/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != ThemeDark {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}
	if opts.WithWidth(40).Width != 40 {
		t.Error("WithWidth should set the width")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	md := config.MarkdownConfig{Style: ThemeLight, EnableEmoji: false, InlineTableLinks: true}
	opts := OptionsFromConfig(md)

	if opts.Style != ThemeLight {
		t.Errorf("Style = %s, want light", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("EnableEmoji should follow config")
	}
	if !opts.InlineTableLinks {
		t.Error("InlineTableLinks should follow config")
	}

	if got := OptionsFromConfig(config.MarkdownConfig{}).Style; got != ThemeDark {
		t.Errorf("empty style should keep default, got %s", got)
	}
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", ThemeASCII)

	opts := OptionsFromConfig(config.DefaultMarkdownConfig())
	if opts.Style != ThemeASCII {
		t.Errorf("expected Style from env, got %s", opts.Style)
	}
}

func TestLoadOptionsFromConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GLAMOUR_STYLE", "")

	opts := LoadOptionsFromConfig()
	if opts.Style != ThemeDark || opts.Width != 80 {
		t.Errorf("LoadOptionsFromConfig() = %+v, want defaults", opts)
	}
}

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{"heading", "# Hello World", 80, "Hello"},
		{"bold", "This is **bold** text", 80, "bold"},
		{"list", "- Executive leadership\n- Operations", 80, "Operations"},
		{"code_block", "```go\nfmt.Println(\"hello\")\n```", 80, "Println"},
		{"link", "[Contact](https://example.com)", 80, "Contact"},
		{"narrow_width", "# Long heading that should wrap", 30, "Long"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := Markdown(tc.input, DefaultOptions().WithWidth(tc.width))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tc.contains) {
				t.Errorf("output should contain %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	output, err := MarkdownWithWidth("# Hello World\n\nThis is a test.", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Hello") || !strings.Contains(output, "test") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestMarkdownEmoji(t *testing.T) {
	input := "Hello :smile: world"

	output, err := Markdown(input, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(output, ":smile:") {
		t.Errorf("emoji should have been converted, got: %s", output)
	}

	opts := DefaultOptions()
	opts.EnableEmoji = false
	output, err = Markdown(input, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, ":smile:") {
		t.Errorf("emoji should NOT have been converted, got: %s", output)
	}
}

func TestMarkdownInvalidStyle(t *testing.T) {
	opts := DefaultOptions()
	opts.Style = "nonexistent_style_path.json"
	if _, err := Markdown("# Test", opts); err == nil {
		t.Error("expected error for invalid style path")
	}
}

func TestReply(t *testing.T) {
	opts := DefaultOptions().WithWidth(60)

	out := Reply("We offer **consulting** services.", opts)
	if !strings.Contains(out, "consulting") {
		t.Errorf("Reply() = %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("Reply() should trim surrounding newlines: %q", out)
	}

	if got := Reply("", opts); got != "" {
		t.Errorf("Reply(\"\") = %q", got)
	}

	bad := opts
	bad.Style = "missing.json"
	if got := Reply("raw *text*", bad); got != "raw *text*" {
		t.Errorf("Reply() on render failure = %q, want raw content", got)
	}
}
