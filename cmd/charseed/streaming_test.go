package main

import (
	"bytes"
	"testing"
)

func TestParseStreamMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    StreamMode
		wantErr bool
	}{
		{in: "", want: StreamInstant},
		{in: "Smooth", want: StreamSmooth},
		{in: " typewriter ", want: StreamTypewriter},
		{in: "quiet", want: StreamQuiet},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseStreamMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseStreamMode(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseStreamMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStreamWriterModes(t *testing.T) {
	t.Parallel()

	for _, mode := range []StreamMode{StreamInstant, StreamSmooth, StreamTypewriter, StreamQuiet} {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			w := NewStreamWriter(mode, &out)
			w.charDelay = 0
			for _, ch := range []string{"h", "i", "\x07", "\n"} {
				w.Write(ch)
			}
			got := w.Flush()
			if got != "hi\x07\n" {
				t.Fatalf("accumulated %q", got)
			}
			if out.String() != "hi�\n" {
				t.Fatalf("printed %q", out.String())
			}
		})
	}
}

func TestStreamWriterQuietPrintsOnlyOnFlush(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := NewStreamWriter(StreamQuiet, &out)
	w.Write("a")
	w.Write("b")
	if out.Len() != 0 {
		t.Fatalf("quiet mode printed early: %q", out.String())
	}
	w.Flush()
	if out.String() != "ab" {
		t.Fatalf("printed %q", out.String())
	}
	w.Flush()
	if out.String() != "ab" {
		t.Fatalf("second flush printed again: %q", out.String())
	}
}
