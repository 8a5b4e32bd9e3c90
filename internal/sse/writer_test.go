package sse

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

// plainWriter hides the Flusher of the embedded recorder
type plainWriter struct {
	rec *httptest.ResponseRecorder
}

func (p plainWriter) Header() http.Header         { return p.rec.Header() }
func (p plainWriter) Write(b []byte) (int, error) { return p.rec.Write(b) }
func (p plainWriter) WriteHeader(code int)        { p.rec.WriteHeader(code) }

func TestNewWriter_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, err := NewWriter(rec); err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	want := map[string]string{
		"Content-Type":      "text/event-stream",
		"Cache-Control":     "no-cache",
		"Connection":        "keep-alive",
		"X-Accel-Buffering": "no",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestNewWriter_Unsupported(t *testing.T) {
	_, err := NewWriter(plainWriter{rec: httptest.NewRecorder()})
	if !errors.Is(err, apierrors.ErrStreamingUnsupported) {
		t.Errorf("NewWriter() error = %v, want ErrStreamingUnsupported", err)
	}
}

func TestWriter_Frames(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteText("Hel"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteError("boom"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDone(); err != nil {
		t.Fatal(err)
	}

	want := "data: {\"type\":\"text\",\"value\":\"Hel\"}\n\n" +
		"data: {\"type\":\"error\",\"value\":\"boom\"}\n\n" +
		"data: [DONE]\n\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
	if !rec.Flushed {
		t.Error("writer should flush frames")
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	w, _ := NewWriter(rec)
	values := []string{"line one\nline two", "quote \" and unicode ✓"}
	for _, v := range values {
		_ = w.WriteText(v)
	}
	_ = w.WriteDone()

	d := NewDecoder(strings.NewReader(rec.Body.String()))
	for _, v := range values {
		payload, err := d.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		ev, err := ParseEvent(payload)
		if err != nil {
			t.Fatalf("ParseEvent() error = %v", err)
		}
		if ev.Type != models.EventText || ev.Value != v {
			t.Errorf("event = %+v, want text %q", ev, v)
		}
	}
	payload, _ := d.Next()
	if !IsDone(payload) {
		t.Errorf("last payload = %q, want [DONE]", payload)
	}
}
