package api

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

// StreamWriter receives the lifecycle of a streamed generation.
type StreamWriter interface {
	Begin(gen Generation) error
	EmitDelta(id, delta string) error
	Complete(gen Generation) error
	Failed(gen Generation) error
}

// SSEStreamWriter writes generation events as server-sent events.
type SSEStreamWriter struct {
	w       io.Writer
	flusher func()
	begun   bool
	index   int
}

func NewSSEStreamWriter(c *echo.Context) (*SSEStreamWriter, error) {
	res := c.Response()
	flusher, ok := res.(interface{ Flush() })
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")

	return &SSEStreamWriter{w: res, flusher: flusher.Flush}, nil
}

func (s *SSEStreamWriter) Begin(gen Generation) error {
	s.begun = true
	gen.Status = generationInProgress
	return s.send("generation.created", gen)
}

func (s *SSEStreamWriter) Started() bool {
	return s.begun
}

func (s *SSEStreamWriter) EmitDelta(id, delta string) error {
	err := s.send("generation.delta", map[string]any{
		"id":    id,
		"index": s.index,
		"delta": delta,
	})
	s.index++
	return err
}

func (s *SSEStreamWriter) Complete(gen Generation) error {
	return s.send("generation.completed", gen)
}

func (s *SSEStreamWriter) Failed(gen Generation) error {
	return s.send("generation.failed", gen)
}

func (s *SSEStreamWriter) send(event string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher()
	}
	return nil
}
