package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/samcharles93/charseed/internal/inference"
)

type StreamMode string

const (
	StreamInstant    StreamMode = "instant"
	StreamSmooth     StreamMode = "smooth"
	StreamTypewriter StreamMode = "typewriter"
	StreamQuiet      StreamMode = "quiet"
)

func parseStreamMode(s string) (StreamMode, error) {
	switch m := StreamMode(strings.ToLower(strings.TrimSpace(s))); m {
	case StreamInstant, StreamSmooth, StreamTypewriter, StreamQuiet:
		return m, nil
	case "":
		return StreamInstant, nil
	default:
		return "", fmt.Errorf("unknown stream mode %q (instant, smooth, typewriter, quiet)", s)
	}
}

// StreamWriter prints generated characters as they arrive. Control
// characters are replaced before they reach the terminal.
type StreamWriter struct {
	mode   StreamMode
	buffer *bufio.Writer

	mu            sync.Mutex
	batch         strings.Builder
	batched       int
	lastFlush     time.Time
	flushInterval time.Duration
	batchSize     int // flush after N characters
	charDelay     time.Duration
	stop          chan struct{}
	stopped       bool

	accumulator strings.Builder
}

// NewStreamWriter creates a streaming output handler writing to out.
func NewStreamWriter(mode StreamMode, out io.Writer) *StreamWriter {
	w := &StreamWriter{
		mode:          mode,
		buffer:        bufio.NewWriterSize(out, 4096),
		flushInterval: 50 * time.Millisecond,
		batchSize:     8,
		charDelay:     15 * time.Millisecond,
		lastFlush:     time.Now(),
		stop:          make(chan struct{}),
	}

	if mode == StreamSmooth {
		go w.backgroundFlusher()
	}

	return w
}

// Write handles a single generated character.
func (w *StreamWriter) Write(ch string) {
	switch w.mode {
	case StreamSmooth:
		w.writeSmooth(ch)
	case StreamTypewriter:
		w.writeTypewriter(ch)
	case StreamQuiet:
		w.writeQuiet(ch)
	default:
		w.writeInstant(ch)
	}
}

// Flush writes anything still buffered, stops the background flusher and
// returns the full text seen so far.
func (w *StreamWriter) Flush() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	first := !w.stopped
	if first {
		close(w.stop)
		w.stopped = true
	}
	switch w.mode {
	case StreamQuiet:
		if first {
			_, _ = w.buffer.WriteString(inference.SanitizeForDisplay(w.accumulator.String()))
		}
	case StreamSmooth:
		w.flushBatch()
	}
	_ = w.buffer.Flush()
	return w.accumulator.String()
}

func (w *StreamWriter) writeInstant(ch string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.accumulator.WriteString(ch)
	_, _ = w.buffer.WriteString(inference.SanitizeForDisplay(ch))
	_ = w.buffer.Flush()
}

func (w *StreamWriter) writeSmooth(ch string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.accumulator.WriteString(ch)
	w.batch.WriteString(ch)
	w.batched++
	if w.batched >= w.batchSize || time.Since(w.lastFlush) >= w.flushInterval {
		w.flushBatch()
	}
}

// writeTypewriter paces output one character at a time.
func (w *StreamWriter) writeTypewriter(ch string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.accumulator.WriteString(ch)
	for _, r := range inference.SanitizeForDisplay(ch) {
		_, _ = w.buffer.WriteRune(r)
		_ = w.buffer.Flush()
		if w.charDelay > 0 {
			time.Sleep(w.charDelay)
		}
	}
}

func (w *StreamWriter) writeQuiet(ch string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accumulator.WriteString(ch)
}

// flushBatch writes the pending batch (must hold lock).
func (w *StreamWriter) flushBatch() {
	if w.batch.Len() == 0 {
		return
	}
	_, _ = w.buffer.WriteString(inference.SanitizeForDisplay(w.batch.String()))
	_ = w.buffer.Flush()

	w.batch.Reset()
	w.batched = 0
	w.lastFlush = time.Now()
}

func (w *StreamWriter) backgroundFlusher() {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			if time.Since(w.lastFlush) >= w.flushInterval {
				w.flushBatch()
			}
			w.mu.Unlock()
		}
	}
}
