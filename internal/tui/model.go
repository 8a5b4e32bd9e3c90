package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/history"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/render"
	"github.com/diogo/tobchat/internal/widget"
)

// Animation tick message
type animationTickMsg time.Time

// widgetChangedMsg tells the model to re-read the widget snapshot
type widgetChangedMsg struct{}

// Options configures the chat TUI
type Options struct {
	// Theme names a render TUI theme; empty keeps the current one
	Theme string
	// Markdown renders assistant replies
	Markdown render.Options
	// ExportDir receives transcripts saved with ctrl+s
	ExportDir string
	// CopyToClipboard backs ctrl+y; nil disables it
	CopyToClipboard func(text string) error
	Logger          zerolog.Logger
}

// Model is the bubbletea model of the chat widget
type Model struct {
	widget  *widget.Widget
	opts    Options
	ctx     context.Context
	changes chan struct{}

	viewport viewport.Model
	textarea textarea.Model

	snap           widget.Snapshot
	ready          bool
	animating      bool
	animationFrame int

	// status is a one-line feedback message below the input
	status      string
	statusError bool

	width  int
	height int
}

// NewChatModel creates the TUI model for w. The widget's change callback is
// replaced so updates from the stream goroutine reach the model.
func NewChatModel(w *widget.Widget, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about weather or company structure..."
	ta.CharLimit = models.MaxInputLength
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	changes := make(chan struct{}, 1)
	w.SetOnChange(func() {
		// Coalesce: one pending notification is enough to redraw
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		widget:   w,
		opts:     opts,
		ctx:      context.Background(),
		changes:  changes,
		textarea: ta,
		snap:     w.Snapshot(),
	}
}

// waitForChange blocks until the widget reports a mutation
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return widgetChangedMsg{}
	}
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForChange(m.changes))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case widgetChangedMsg:
		m.refresh()
		cmds = append(cmds, waitForChange(m.changes))
		if m.snap.Pending && !m.animating {
			m.animating = true
			cmds = append(cmds, animationTick())
		}

	case animationTickMsg:
		if m.snap.Pending {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick())
		} else {
			m.animating = false
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.widget.Close()
			return m, tea.Quit
		}
		if !m.snap.Open {
			switch msg.String() {
			case "ctrl+o", "enter":
				m.widget.Open()
				m.refresh()
			case "q":
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "esc":
			m.widget.Close()
			m.refresh()
			return m, nil

		case "ctrl+l":
			m.widget.Clear()
			m.textarea.Reset()
			m.setStatus("Conversation cleared", false)
			m.refresh()
			return m, nil

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "ctrl+s":
			m.saveTranscript()
			return m, nil

		case "enter":
			if m.snap.Pending {
				return m, nil
			}
			return m, m.submit()
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.snap.Pending {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit sends the textarea content through the widget
func (m *Model) submit() tea.Cmd {
	_, err := m.widget.Submit(m.ctx, m.textarea.Value())
	switch {
	case errors.Is(err, apierrors.ErrInvalidQuery):
		// Blank input is a no-op, like a disabled send button
		if strings.TrimSpace(m.textarea.Value()) != "" {
			m.setStatus(fmt.Sprintf("Messages must be at most %d characters", models.MaxQueryLength), true)
		}
		return nil
	case err != nil:
		m.setStatus(err.Error(), true)
		return nil
	}

	m.textarea.Reset()
	m.status = ""
	m.animationFrame = 0
	m.refresh()
	if m.animating {
		return nil
	}
	m.animating = true
	return animationTick()
}

func (m *Model) copyLastReply() {
	reply, ok := m.widget.LastReply()
	switch {
	case !ok:
		m.setStatus("Nothing to copy yet", true)
	case m.opts.CopyToClipboard == nil:
		m.setStatus("Clipboard unavailable", true)
	default:
		if err := m.opts.CopyToClipboard(reply); err != nil {
			m.opts.Logger.Warn().Err(err).Msg("clipboard write failed")
			m.setStatus("Failed to copy: "+err.Error(), true)
			return
		}
		m.setStatus("Copied last reply to clipboard", false)
	}
}

func (m *Model) saveTranscript() {
	t := history.NewTranscript(m.widget.SessionID(), m.widget.Messages())
	path := filepath.Join(m.opts.ExportDir, history.DefaultFileName(t, history.ExportFormatMarkdown))
	if err := history.Save(path, t); err != nil {
		m.opts.Logger.Warn().Err(err).Str("path", path).Msg("transcript export failed")
		m.setStatus("Save failed: "+err.Error(), true)
		return
	}
	m.opts.Logger.Info().Str("path", path).Int("messages", len(t.Messages)).Msg("transcript saved")
	m.setStatus("Saved "+path, false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusError = isErr
}

// refresh re-reads the widget and redraws the message list
func (m *Model) refresh() {
	m.snap = m.widget.Snapshot()
	if m.snap.Pending {
		m.textarea.Blur()
	} else {
		m.textarea.Focus()
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) resize() {
	headerHeight := 3 // Header panel with border
	inputHeight := 6  // Input panel with border and counter
	statusHeight := 2 // Status bar plus feedback line
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.updateViewport()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if !m.snap.Open {
		return m.renderLauncher()
	}

	contentWidth := m.width - 4

	var sections []string

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Chat with AI"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(models.ChatbotName),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	messagesContent := m.viewport.View()
	if len(m.snap.Messages) == 0 {
		messagesContent = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(m.renderInput()))
	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.status != "" {
		style := successStyle
		if m.statusError {
			style = errorStyle
		}
		sections = append(sections, style.Render("  "+m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLauncher draws the closed widget: a single button in the corner
func (m Model) renderLauncher() string {
	button := launcherStyle.Render("💬 Chat with AI")
	hint := hintStyle.Render("ctrl+o open  •  ctrl+c quit")
	block := lipgloss.JoinVertical(lipgloss.Right, button, hint)
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, block)
}

// renderWelcome renders the welcome panel when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	topics := []string{
		"Weather conditions and forecasts",
		"Company structure and personnel",
		"Department leads and roles",
	}
	var list strings.Builder
	for _, t := range topics {
		list.WriteString(welcomeTopicStyle.Render("  • " + t))
		list.WriteString("\n")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("💬"),
		"",
		welcomeTitleStyle.Width(width).Render("Start a conversation with the AI assistant!"),
		"",
		welcomeStyle.Width(width).Render("You can ask about:"),
		lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.TrimRight(list.String(), "\n")),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderInput() string {
	if m.snap.Pending {
		return m.renderLoadingAnimation()
	}

	parts := []string{inputLabelStyle.Render("You"), m.textarea.View()}
	if n := utf8.RuneCountInString(m.textarea.Value()); n > models.InputWarnThreshold {
		parts = append(parts, counterStyle.Render(fmt.Sprintf("%d characters remaining", models.MaxInputLength-n)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Waiting for the reply ")
	return fmt.Sprintf("%s%s%s", spin, text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^L", "Clear"},
		{"^Y", "Copy"},
		{"^S", "Save"},
		{"Esc", "Close"},
		{"^C", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = m.viewport.Width
	}

	last := len(m.snap.Messages) - 1
	for i, msg := range m.snap.Messages {
		if i > 0 {
			content.WriteString("\n")
		}
		switch msg.Role {
		case models.RoleUser:
			label := userLabelStyle.Render("You ⬤")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
			content.WriteString(lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block))
		default:
			content.WriteString(assistantLabelStyle.Render("✦ " + models.ChatbotName))
			content.WriteString("\n")
			content.WriteString(m.renderAssistant(msg.Content, bubbleWidth, i == last))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderAssistant draws one assistant bubble: markdown, an error bubble or
// the thinking placeholder for the in-flight reply
func (m Model) renderAssistant(content string, width int, isLast bool) string {
	switch {
	case content == "" && isLast && m.snap.Pending:
		frame := []string{"◐", "◓", "◑", "◒"}[m.animationFrame%4]
		return assistantBubbleStyle.Width(width).Render(loadingStyle.Render(frame) + hintStyle.Render(" Thinking..."))
	case models.IsErrorContent(content):
		return errorBubbleStyle.Width(width).Render(content)
	default:
		rendered := render.Reply(content, m.opts.Markdown.WithWidth(width-4))
		return assistantBubbleStyle.Width(width).Render(rendered)
	}
}

// RunChat starts the chat TUI on the alt screen
func RunChat(w *widget.Widget, opts Options) error {
	if opts.Theme != "" && render.SetTUITheme(opts.Theme) {
		UpdateTheme()
	}
	if opts.Markdown.Style == "" {
		opts.Markdown = render.DefaultOptions()
		opts.Markdown.Style = render.GetTUITheme().MarkdownStyle
	}

	m := NewChatModel(w, opts)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.ctx = ctx

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
