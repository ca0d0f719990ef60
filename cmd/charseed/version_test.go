package main

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/samcharles93/charseed/internal/version"
)

func TestWriteVersion(t *testing.T) {
	t.Parallel()

	var full bytes.Buffer
	writeVersion(&full, version.Info{
		Version:   "v0.3.0",
		Commit:    "0123456789abcdef",
		BuildTime: "2026-10-01T00:00:00Z",
		GoVersion: "go1.26.0",
	})
	want := "charseed v0.3.0\n" +
		"  commit:     0123456789abcdef\n" +
		"  built:      2026-10-01T00:00:00Z\n" +
		"  go:         go1.26.0 " + runtime.GOOS + "/" + runtime.GOARCH + "\n"
	if full.String() != want {
		t.Fatalf("output = %q, want %q", full.String(), want)
	}

	var dev bytes.Buffer
	writeVersion(&dev, version.Info{Version: "dev", GoVersion: "go1.26.0"})
	if strings.Contains(dev.String(), "commit:") || strings.Contains(dev.String(), "built:") {
		t.Fatalf("empty fields should be omitted: %q", dev.String())
	}
}
