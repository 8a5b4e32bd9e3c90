// Package sse implements the server-sent event framing used by the chat API.
package sse

import (
	"bytes"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

const readChunkSize = 4096

// Decoder splits an event stream into data payloads.
// Bytes are buffered until a whole event block is available, so UTF-8
// sequences and frames split across reads are reassembled before decoding.
type Decoder struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	cr    bool // previous read ended with '\r'
	err   error
}

// NewDecoder creates a Decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:     r,
		chunk: make([]byte, readChunkSize),
	}
}

// Next returns the next event payload. It returns io.EOF once the stream is
// exhausted, or the underlying read error.
func (d *Decoder) Next() (string, error) {
	for {
		if idx := bytes.Index(d.buf, []byte("\n\n")); idx >= 0 {
			block := d.buf[:idx]
			d.buf = d.buf[idx+2:]
			if payload, ok := parseBlock(block); ok {
				return payload, nil
			}
			continue
		}

		if d.err != nil {
			if len(d.buf) > 0 {
				block := d.buf
				d.buf = nil
				if payload, ok := parseBlock(block); ok {
					return payload, nil
				}
			}
			return "", d.err
		}

		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.append(d.chunk[:n])
		}
		if err != nil {
			if d.cr {
				d.buf = append(d.buf, '\n')
				d.cr = false
			}
			d.err = err
		}
	}
}

// append adds raw bytes to the buffer with line endings normalised to '\n'
func (d *Decoder) append(p []byte) {
	if d.cr {
		d.cr = false
		d.buf = append(d.buf, '\n')
		if len(p) > 0 && p[0] == '\n' {
			p = p[1:]
		}
	}
	if len(p) > 0 && p[len(p)-1] == '\r' {
		d.cr = true
		p = p[:len(p)-1]
	}
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\r')
		if i < 0 {
			d.buf = append(d.buf, p...)
			return
		}
		d.buf = append(d.buf, p[:i]...)
		d.buf = append(d.buf, '\n')
		p = p[i+1:]
		if len(p) > 0 && p[0] == '\n' {
			p = p[1:]
		}
	}
}

// parseBlock extracts the joined data lines of one event block
func parseBlock(block []byte) (string, bool) {
	var data []string
	for _, line := range strings.Split(string(block), "\n") {
		if !strings.HasPrefix(line, models.EventPrefix) {
			continue
		}
		value := strings.TrimLeft(line[len(models.EventPrefix):], " \t")
		data = append(data, strings.TrimRight(value, " \t"))
	}
	if len(data) == 0 {
		return "", false
	}
	return strings.Join(data, "\n"), true
}

// IsDone reports whether payload is the end-of-stream sentinel
func IsDone(payload string) bool {
	return strings.TrimSpace(payload) == models.DoneSentinel
}

// ParseEvent decodes a JSON payload into a StreamEvent
func ParseEvent(payload string) (models.StreamEvent, error) {
	if !gjson.Valid(payload) {
		return models.StreamEvent{}, apierrors.NewParseError("invalid JSON payload", payload)
	}

	typ := gjson.Get(payload, "type")
	if typ.Type != gjson.String || typ.Str == "" {
		return models.StreamEvent{}, apierrors.NewParseError("missing event type", payload)
	}

	return models.StreamEvent{
		Type:  typ.Str,
		Value: gjson.Get(payload, "value").String(),
	}, nil
}
