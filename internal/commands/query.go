package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/tobchat/internal/api"
	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/logging"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginBottom(0)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	errorTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	// Spinner characters
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	// Build spinner character with color
	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	// Build animated bar
	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	// Build animated dots
	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	// Message with color
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	// Print animation (clear line first)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// NewAskCmd creates the ask command, the explicit form of `tobchat [question]`
func NewAskCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the reply",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.server, opts.verbose = root.server, root.verbose

			question, ok, err := readQuestion(deps, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: no question given", apierrors.ErrInvalidQuery)
			}
			return runQuery(cmd.Context(), deps, opts, question)
		},
	}
	addQueryFlags(cmd, opts)
	return cmd
}

// runQuery sends one question and prints the reply. Raw mode (or a non-TTY
// stdout) streams the reply as it arrives; decorated mode renders markdown
// in a bubble once the stream ends.
func runQuery(ctx context.Context, deps *Dependencies, opts *rootOptions, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	question = strings.TrimSpace(question)
	if !models.IsValidQuery(question) {
		return fmt.Errorf("%w: questions must be 1 to %d characters", apierrors.ErrInvalidQuery, models.MaxQueryLength)
	}

	cfg := resolveConfig(deps, opts)
	level := "warn"
	if cfg.Verbose {
		level = "debug"
	}
	logger := logging.Component(logging.New(deps.Stderr, level), "ask")

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	decorated := !opts.raw && deps.IsTTY != nil && deps.IsTTY()
	streamToStdout := !decorated && opts.output == ""

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Thinking")
		spin.start()
	}

	printed := 0
	onUpdate := func(accumulated string) {
		if !streamToStdout || len(accumulated) <= printed {
			return
		}
		fmt.Fprint(deps.Stdout, accumulated[printed:])
		printed = len(accumulated)
	}

	startTime := time.Now()
	reply, err := client.Stream(ctx, []models.Message{{Role: models.RoleUser, Content: question}}, onUpdate)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("chat request failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	logger.Debug().
		Str("session", client.SessionID()).
		Str("reason", string(reply.Reason)).
		Int("events", reply.Events).
		Int("skipped", reply.Skipped).
		Dur("took", time.Since(startTime).Round(time.Millisecond)).
		Msg("reply received")

	if streamToStdout && printed > 0 && !strings.HasSuffix(reply.Content, "\n") {
		fmt.Fprintln(deps.Stdout)
	}

	if cfg.CopyToClipboard && deps.CopyToClipboard != nil {
		if err := deps.CopyToClipboard(reply.Content); err != nil {
			fmt.Fprintln(deps.Stderr, errorTextStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output),
			))
		}
	} else if decorated {
		printBubble(deps.Stdout, reply.Content, render.LoadOptionsFromConfig())
	}

	if reply.Reason == api.ReasonErrorEvent {
		return apierrors.NewStreamError("the server reported an error while answering")
	}
	return nil
}

// printBubble renders the reply as markdown inside the assistant bubble
func printBubble(w io.Writer, content string, renderOpts render.Options) {
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(w, assistantLabelStyle.Render("✦ "+models.ChatbotName))
	rendered := render.Reply(content, renderOpts.WithWidth(contentWidth))
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorTextStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the chat API is running ('tobchat serve') and --server points at it"))
	case errors.Is(err, apierrors.ErrInvalidQuery):
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Hint: Ask a non-empty question of at most %d characters", models.MaxQueryLength)))
	case apierrors.IsStreamError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check the server logs for the agent failure"))
	case apierrors.IsCanceled(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The request was cancelled or timed out; raise request_timeout in the config"))
	}

	return sb.String()
}
