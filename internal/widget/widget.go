// Package widget holds the chat widget state: the open flag, the conversation
// and the single in-flight send.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/tobchat/internal/api"
	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

// Sender streams one assistant reply for a conversation history.
// *api.ChatClient satisfies it.
type Sender interface {
	Stream(ctx context.Context, messages []models.Message, onUpdate api.UpdateFunc) (*api.Reply, error)
}

// State is the visible state of the widget
type State string

const (
	StateClosed     State = "closed"
	StateOpenEmpty  State = "open-empty"
	StateOpenActive State = "open-active"
	StateOpenIdle   State = "open-idle"
)

// Snapshot is a consistent copy of the widget state for rendering
type Snapshot struct {
	State    State
	Open     bool
	Pending  bool
	Messages []models.Message
}

// Widget is safe for concurrent use by a renderer and the stream goroutine
type Widget struct {
	sender    Sender
	sessionID string
	logger    zerolog.Logger

	mu       sync.Mutex
	conv     *models.Conversation
	open     bool
	pending  bool
	gen      uint64
	cancel   context.CancelFunc
	onChange func()
}

// Option configures a Widget
type Option func(*Widget)

// WithSessionID sets the session id instead of generating one
func WithSessionID(id string) Option {
	return func(w *Widget) {
		if id != "" {
			w.sessionID = id
		}
	}
}

// WithLogger sets the widget logger
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// WithOnChange registers the change callback
func WithOnChange(fn func()) Option {
	return func(w *Widget) {
		w.onChange = fn
	}
}

// WithOpen starts the widget in the open state
func WithOpen() Option {
	return func(w *Widget) {
		w.open = true
	}
}

// New creates a closed widget with an empty conversation
func New(sender Sender, opts ...Option) *Widget {
	w := &Widget{
		sender:    sender,
		sessionID: uuid.NewString(),
		logger:    zerolog.Nop(),
		conv:      models.NewConversation(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SessionID returns the id sent with requests for log correlation
func (w *Widget) SessionID() string {
	return w.sessionID
}

// SetOnChange replaces the change callback. It is called after every
// mutation, outside the widget lock.
func (w *Widget) SetOnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *Widget) notify() {
	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (w *Widget) stateLocked() State {
	switch {
	case !w.open:
		return StateClosed
	case w.pending:
		return StateOpenActive
	case w.conv.Len() == 0:
		return StateOpenEmpty
	default:
		return StateOpenIdle
	}
}

// State returns the current widget state
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// Snapshot returns a copy of everything a renderer needs
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:    w.stateLocked(),
		Open:     w.open,
		Pending:  w.pending,
		Messages: w.conv.Messages(),
	}
}

// Messages returns a copy of the conversation
func (w *Widget) Messages() []models.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conv.Messages()
}

// IsPending reports whether a send is in flight
func (w *Widget) IsPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// IsOpen reports whether the widget is open
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Open shows the widget
func (w *Widget) Open() {
	w.setOpen(true)
}

// Close hides the widget and cancels an in-flight stream.
// The partial reply stays in the conversation.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.open = false
	w.mu.Unlock()
	w.notify()
}

// Toggle flips the open flag
func (w *Widget) Toggle() {
	if w.IsOpen() {
		w.Close()
		return
	}
	w.Open()
}

func (w *Widget) setOpen(open bool) {
	w.mu.Lock()
	w.open = open
	w.mu.Unlock()
	w.notify()
}

// Clear empties the conversation and drops any in-flight stream
func (w *Widget) Clear() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++
	w.pending = false
	w.conv.Clear()
	w.mu.Unlock()
	w.logger.Debug().Str("session", w.sessionID).Msg("conversation cleared")
	w.notify()
}

// Turn is one submitted message and its streamed reply
type Turn struct {
	done  chan struct{}
	reply *api.Reply
	err   error
}

// Done is closed when the turn has finished
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn finishes and returns its outcome
func (t *Turn) Wait() (*api.Reply, error) {
	<-t.done
	return t.reply, t.err
}

// Submit appends the user message and an empty assistant placeholder, then
// streams the reply in the background.
func (w *Widget) Submit(ctx context.Context, input string) (*Turn, error) {
	query := strings.TrimSpace(input)
	if !models.IsValidQuery(query) {
		return nil, apierrors.ErrInvalidQuery
	}

	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return nil, apierrors.ErrBusy
	}

	w.conv.Append(models.Message{Role: models.RoleUser, Content: query})
	history := w.conv.Messages()
	w.conv.Append(models.Message{Role: models.RoleAssistant, Content: ""})

	streamCtx, cancel := context.WithCancel(ctx)
	w.pending = true
	w.gen++
	gen := w.gen
	w.cancel = cancel
	w.mu.Unlock()

	w.notify()

	turn := &Turn{done: make(chan struct{})}
	go w.run(streamCtx, cancel, gen, history, turn)
	return turn, nil
}

func (w *Widget) run(ctx context.Context, cancel context.CancelFunc, gen uint64, history []models.Message, turn *Turn) {
	defer cancel()

	reply, err := w.sender.Stream(ctx, history, func(accumulated string) {
		w.update(gen, accumulated)
	})

	w.finish(gen, err)

	turn.reply, turn.err = reply, err
	close(turn.done)
}

// update replaces the in-progress assistant message unless the turn is stale
func (w *Widget) update(gen uint64, accumulated string) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.conv.ReplaceLast(models.Message{Role: models.RoleAssistant, Content: accumulated})
	w.mu.Unlock()
	w.notify()
}

func (w *Widget) finish(gen uint64, err error) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.cancel = nil

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		w.logger.Debug().Str("session", w.sessionID).Msg("stream cancelled")
	default:
		w.logger.Error().Err(err).Str("session", w.sessionID).Msg("send failed")
		w.conv.ReplaceLast(models.Message{Role: models.RoleAssistant, Content: models.FormatTransportError(err)})
	}
	w.mu.Unlock()
	w.notify()
}

// LastReply returns the most recent assistant message content
func (w *Widget) LastReply() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg, ok := w.conv.LastByRole(models.RoleAssistant)
	if !ok || msg.Content == "" {
		return "", false
	}
	return msg.Content, true
}
