package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("model loaded", "path", "model.onnx")

	out := buf.String()
	for _, want := range []string{`"msg":"model loaded"`, `"path":"model.onnx"`, `"level":"INFO"`, `"source"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestTextLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Debug("hidden too")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("shown", "steps", 3)
	if !strings.Contains(buf.String(), "msg=shown steps=3") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("nothing")
	log.With("k", "v").WithGroup("g").Info("nothing")
}

func TestWithAndWithGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("component", "api").WithGroup("generation")
	log.Info("done", "steps", 100)

	out := buf.String()
	if !strings.Contains(out, `"component":"api"`) {
		t.Fatalf("missing component: %s", out)
	}
	if !strings.Contains(out, `"generation":{"steps":100}`) {
		t.Fatalf("missing group: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), Text(&buf, slog.LevelInfo))
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{
		"":       FormatAuto,
		"auto":   FormatAuto,
		"Pretty": FormatPretty,
		"text":   FormatText,
		"json":   FormatJSON,
	} {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetupAutoFallsBackToTextForBuffers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	Setup(slog.LevelInfo, FormatAuto, &buf).Info("plain")
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("auto format wrote colour codes to a buffer: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Fatalf("expected logfmt output, got: %s", buf.String())
	}
}

func TestSetupJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	Setup(slog.LevelDebug, FormatJSON, &buf).Debug("encoded")
	if !strings.Contains(buf.String(), `"msg":"encoded"`) {
		t.Fatalf("expected JSON output, got: %s", buf.String())
	}
}

func TestPrettyHandlerLayout(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	r := slog.NewRecord(time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC), slog.LevelWarn, "slow step", 0)
	r.AddAttrs(slog.Int("step", 4), slog.Duration("elapsed", 1500*time.Millisecond))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"03:04:05.006", "WRN", "slow step", "step=" + ansiReset + "4", "elapsed=" + ansiReset + "1.5s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("record not newline terminated: %q", out)
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var h slog.Handler = NewPrettyHandler(&buf, nil)
	h = h.WithAttrs([]slog.Attr{slog.String("service", "charseed")})
	h = h.WithGroup("a").WithGroup("b")
	slog.New(h).Info("nested", "key", "val", slog.Group("g", "x", 1))

	out := stripANSI(buf.String())
	for _, want := range []string{"service=charseed", "a.b.key=val", "a.b.g.x=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if h2 := NewPrettyHandler(&buf, nil); h2.WithGroup("") != h2 {
		t.Fatal("WithGroup(\"\") should return the same handler")
	}
}

func TestPrettyHandlerQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("q",
		"simple", "abc",
		"spaced", "hello world",
		"empty", "",
		"err", errors.New("bad seed"),
	)
	out := stripANSI(buf.String())
	for _, want := range []string{"simple=abc", `spaced="hello world"`, `empty=""`, `err="bad seed"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"simple", false},
		{"no-special-chars", false},
		{"", true},
		{"has space", true},
		{"has\ttab", true},
		{"has\nnewline", true},
		{`has"quote`, true},
		{"k=v", true},
		{"\u009b", true},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.want {
			t.Errorf("needsQuoting(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func stripANSI(s string) string {
	for _, code := range []string{ansiReset, ansiDim, ansiRed, ansiGreen, ansiYellow, ansiMag, ansiCyan} {
		s = strings.ReplaceAll(s, code, "")
	}
	return s
}
