package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

// Writer emits SSE frames on an HTTP response, flushing after each one
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares w for streaming and writes the event-stream headers
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, apierrors.ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &Writer{w: w, flusher: flusher}, nil
}

// EncodeEvent returns the wire frame for ev
func EncodeEvent(ev models.StreamEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	frame := make([]byte, 0, len(data)+8)
	frame = append(frame, models.EventPrefix...)
	frame = append(frame, ' ')
	frame = append(frame, data...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

// DoneFrame returns the end-of-stream frame
func DoneFrame() []byte {
	return []byte(models.EventPrefix + " " + models.DoneSentinel + "\n\n")
}

// WriteText sends a text delta
func (s *Writer) WriteText(value string) error {
	return s.WriteEvent(models.StreamEvent{Type: models.EventText, Value: value})
}

// WriteError sends an error event
func (s *Writer) WriteError(value string) error {
	return s.WriteEvent(models.StreamEvent{Type: models.EventError, Value: value})
}

// WriteEvent sends a single event frame
func (s *Writer) WriteEvent(ev models.StreamEvent) error {
	frame, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	return s.write(frame)
}

// WriteDone sends the end-of-stream sentinel
func (s *Writer) WriteDone() error {
	return s.write(DoneFrame())
}

func (s *Writer) write(frame []byte) error {
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
