package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/sse"
)

// Reason tells why a stream stopped
type Reason string

const (
	ReasonDone       Reason = "done"
	ReasonEOF        Reason = "eof"
	ReasonErrorEvent Reason = "error_event"
)

// Reply is the outcome of one streamed request
type Reply struct {
	// Content is the accumulated assistant text, including an appended
	// error marker when the stream carried an error event
	Content string
	Reason  Reason
	Events  int // well-formed events received
	Skipped int // malformed or unknown events dropped
}

// UpdateFunc receives the full accumulated reply after every change
type UpdateFunc func(accumulated string)

// Stream posts the conversation history and consumes the SSE reply.
// onUpdate may be nil.
func (c *ChatClient) Stream(ctx context.Context, messages []models.Message, onUpdate UpdateFunc) (*Reply, error) {
	endpoint := c.endpoint(models.ChatPath)

	payload, err := json.Marshal(models.ChatRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("send message", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, http.StatusText(resp.StatusCode), readErrorBody(resp.Body))
	}
	if resp.Body == nil {
		return nil, apierrors.ErrEmptyBody
	}

	// unblock a pending read when the caller gives up
	stop := context.AfterFunc(ctx, func() { _ = resp.Body.Close() })
	defer stop()

	return c.consume(ctx, endpoint, resp.Body, onUpdate)
}

// consume runs the decoder loop over body until [DONE], an error event or EOF
func (c *ChatClient) consume(ctx context.Context, endpoint string, body io.Reader, onUpdate UpdateFunc) (*Reply, error) {
	reply := &Reply{}
	var content strings.Builder

	emit := func() {
		reply.Content = content.String()
		if onUpdate != nil {
			onUpdate(reply.Content)
		}
	}

	dec := sse.NewDecoder(body)
	for {
		payload, err := dec.Next()
		if err != nil {
			reply.Content = content.String()
			if ctx.Err() != nil {
				return reply, ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				reply.Reason = ReasonEOF
				return reply, nil
			}
			return reply, apierrors.NewNetworkErrorWithEndpoint("read stream", endpoint, err)
		}
		if ctx.Err() != nil {
			reply.Content = content.String()
			return reply, ctx.Err()
		}

		if sse.IsDone(payload) {
			reply.Reason = ReasonDone
			reply.Content = content.String()
			return reply, nil
		}

		ev, err := sse.ParseEvent(payload)
		if err != nil {
			reply.Skipped++
			c.logger.Warn().Err(err).Str("payload", truncate(payload, 120)).Msg("skipping malformed event")
			continue
		}
		reply.Events++

		switch ev.Type {
		case models.EventText:
			content.WriteString(ev.Value)
			emit()
		case models.EventError:
			content.WriteString(models.FormatStreamError(ev.Value))
			emit()
			reply.Reason = ReasonErrorEvent
			c.logger.Debug().Str("value", ev.Value).Msg("stream ended with error event")
			return reply, nil
		default:
			reply.Skipped++
			c.logger.Debug().Str("type", ev.Type).Msg("ignoring unknown event type")
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
