package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

func textFrame(v string) []byte {
	b, _ := json.Marshal(models.StreamEvent{Type: models.EventText, Value: v})
	return []byte("data: " + string(b) + "\n\n")
}

func errorFrame(v string) []byte {
	b, _ := json.Marshal(models.StreamEvent{Type: models.EventError, Value: v})
	return []byte("data: " + string(b) + "\n\n")
}

var doneFrame = []byte("data: [DONE]\n\n")

// failingBody returns its chunks and then a read error
type failingBody struct {
	chunks [][]byte
	err    error
}

func (f *failingBody) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, f.err
	}
	n := copy(p, f.chunks[0])
	f.chunks = f.chunks[1:]
	return n, nil
}

func (f *failingBody) Close() error { return nil }

func newStreamClient(t *testing.T, mock *MockHttpClient) *ChatClient {
	t.Helper()
	client, err := NewClient(WithHTTPClient(mock), WithBaseURL("http://chat.test"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestStream(t *testing.T) {
	tests := []struct {
		name        string
		chunks      [][]byte
		wantContent string
		wantUpdates []string
		wantReason  Reason
		wantEvents  int
		wantSkipped int
	}{
		{
			name:        "text deltas accumulate",
			chunks:      [][]byte{textFrame("Hel"), textFrame("lo"), doneFrame},
			wantContent: "Hello",
			wantUpdates: []string{"Hel", "Hello"},
			wantReason:  ReasonDone,
			wantEvents:  2,
		},
		{
			name:        "error event stops the loop",
			chunks:      [][]byte{textFrame("Hel"), errorFrame("boom"), textFrame("ignored"), doneFrame},
			wantContent: "Hel\n[Error]: boom",
			wantUpdates: []string{"Hel", "Hel\n[Error]: boom"},
			wantReason:  ReasonErrorEvent,
			wantEvents:  2,
		},
		{
			name:        "malformed event is skipped",
			chunks:      [][]byte{textFrame("a"), []byte("data: {bad json\n\n"), textFrame("b"), doneFrame},
			wantContent: "ab",
			wantUpdates: []string{"a", "ab"},
			wantReason:  ReasonDone,
			wantEvents:  2,
			wantSkipped: 1,
		},
		{
			name:        "unknown event type is skipped",
			chunks:      [][]byte{[]byte(`data: {"type":"ping","value":"x"}` + "\n\n"), textFrame("a"), doneFrame},
			wantContent: "a",
			wantUpdates: []string{"a"},
			wantReason:  ReasonDone,
			wantEvents:  2,
			wantSkipped: 1,
		},
		{
			name:        "nothing after done is read",
			chunks:      [][]byte{textFrame("a"), doneFrame, textFrame("b")},
			wantContent: "a",
			wantUpdates: []string{"a"},
			wantReason:  ReasonDone,
			wantEvents:  1,
		},
		{
			name:        "eof without done",
			chunks:      [][]byte{textFrame("partial")},
			wantContent: "partial",
			wantUpdates: []string{"partial"},
			wantReason:  ReasonEOF,
			wantEvents:  1,
		},
		{
			name:        "frame split mid-json",
			chunks:      [][]byte{[]byte(`data: {"type":"te`), []byte(`xt","value":"hi"}` + "\n"), []byte("\n"), doneFrame},
			wantContent: "hi",
			wantUpdates: []string{"hi"},
			wantReason:  ReasonDone,
			wantEvents:  1,
		},
		{
			name:        "empty stream",
			chunks:      nil,
			wantContent: "",
			wantReason:  ReasonEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockHttpClientWithBody(NewChunkedResponseBody(tt.chunks...), 200)
			client := newStreamClient(t, mock)

			var updates []string
			reply, err := client.Stream(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, func(s string) {
				updates = append(updates, s)
			})
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}

			if reply.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", reply.Content, tt.wantContent)
			}
			if reply.Reason != tt.wantReason {
				t.Errorf("Reason = %s, want %s", reply.Reason, tt.wantReason)
			}
			if reply.Events != tt.wantEvents {
				t.Errorf("Events = %d, want %d", reply.Events, tt.wantEvents)
			}
			if reply.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", reply.Skipped, tt.wantSkipped)
			}
			if strings.Join(updates, "|") != strings.Join(tt.wantUpdates, "|") {
				t.Errorf("updates = %q, want %q", updates, tt.wantUpdates)
			}
		})
	}
}

func TestStream_MultibyteSplitAcrossChunks(t *testing.T) {
	frame := textFrame("café ☕")
	idx := strings.Index(string(frame), "☕") + 1

	mock := NewMockHttpClientWithBody(NewChunkedResponseBody(frame[:idx], frame[idx:], doneFrame), 200)
	client := newStreamClient(t, mock)

	reply, err := client.Stream(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if reply.Content != "café ☕" {
		t.Errorf("Content = %q", reply.Content)
	}
}

func TestStream_Request(t *testing.T) {
	mock := NewMockHttpClient(doneFrame, 200)
	client, _ := NewClient(WithHTTPClient(mock), WithBaseURL("http://chat.test"), WithSessionID("sess-1"))

	history := []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleAssistant, Content: "Hello"},
		{Role: models.RoleUser, Content: "Who leads IT?"},
	}
	if _, err := client.Stream(context.Background(), history, nil); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	req, body := mock.LastRequest()
	if req.Method != fhttp.MethodPost {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.String() != "http://chat.test"+models.ChatPath {
		t.Errorf("URL = %s", req.URL.String())
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %s", req.Header.Get("Content-Type"))
	}
	if req.Header.Get(models.SessionHeader) != "sess-1" {
		t.Errorf("%s = %s", models.SessionHeader, req.Header.Get(models.SessionHeader))
	}

	var got models.ChatRequest
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if len(got.Messages) != 3 || got.Messages[2].Content != "Who leads IT?" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if !strings.Contains(string(body), `"role":"assistant"`) {
		t.Errorf("body = %s", body)
	}
}

func TestStream_Failures(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		mock := NewMockHttpClient([]byte(`{"error":"bad"}`), 500)
		client := newStreamClient(t, mock)

		called := false
		reply, err := client.Stream(context.Background(), nil, func(string) { called = true })
		if reply != nil {
			t.Errorf("reply = %+v, want nil", reply)
		}
		if !apierrors.IsAPIError(err) || apierrors.GetHTTPStatus(err) != 500 {
			t.Fatalf("Stream() error = %v, want APIError 500", err)
		}
		if apierrors.GetResponseBody(err) != `{"error":"bad"}` {
			t.Errorf("body = %q", apierrors.GetResponseBody(err))
		}
		if called {
			t.Error("onUpdate must not be called on HTTP failure")
		}
	})

	t.Run("error body is capped", func(t *testing.T) {
		mock := NewMockHttpClient([]byte(strings.Repeat("x", 10000)), 502)
		client := newStreamClient(t, mock)

		_, err := client.Stream(context.Background(), nil, nil)
		if len(apierrors.GetResponseBody(err)) != maxErrorBody {
			t.Errorf("body length = %d, want %d", len(apierrors.GetResponseBody(err)), maxErrorBody)
		}
	})

	t.Run("nil body", func(t *testing.T) {
		mock := &MockHttpClient{Response: &fhttp.Response{StatusCode: 200, Header: make(fhttp.Header)}}
		client := newStreamClient(t, mock)

		_, err := client.Stream(context.Background(), nil, nil)
		if !errors.Is(err, apierrors.ErrEmptyBody) {
			t.Errorf("Stream() error = %v, want ErrEmptyBody", err)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		mock := NewMockHttpClientWithError(errors.New("dial tcp: connection refused"))
		client := newStreamClient(t, mock)

		_, err := client.Stream(context.Background(), nil, nil)
		if !apierrors.IsNetworkError(err) {
			t.Errorf("Stream() error = %v, want NetworkError", err)
		}
		if models.FormatTransportError(err) == "" {
			t.Error("transport error should format for display")
		}
	})

	t.Run("read error mid-stream keeps partial reply", func(t *testing.T) {
		body := &failingBody{chunks: [][]byte{textFrame("Hel")}, err: errors.New("connection reset")}
		mock := NewMockHttpClientWithBody(body, 200)
		client := newStreamClient(t, mock)

		reply, err := client.Stream(context.Background(), nil, nil)
		if !apierrors.IsNetworkError(err) {
			t.Fatalf("Stream() error = %v, want NetworkError", err)
		}
		if reply == nil || reply.Content != "Hel" {
			t.Errorf("reply = %+v, want partial content", reply)
		}
	})
}

func TestStream_Cancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	mock := NewMockHttpClientWithBody(pr, 200)
	client := newStreamClient(t, mock)

	go func() {
		_, _ = pw.Write(textFrame("Hel"))
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reply, err := client.Stream(ctx, nil, func(string) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Stream() error = %v, want context.Canceled", err)
	}
	if reply == nil || reply.Content != "Hel" {
		t.Errorf("reply = %+v, want partial content", reply)
	}
}

func TestStream_CanceledBeforeSend(t *testing.T) {
	mock := NewMockHttpClientWithError(errors.New("request canceled"))
	client := newStreamClient(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Stream(ctx, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Stream() error = %v, want context.Canceled", err)
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Error("short strings are unchanged")
	}
	if truncate("ååååå", 2) != "åå..." {
		t.Errorf("truncate() = %q", truncate("ååååå", 2))
	}
}
