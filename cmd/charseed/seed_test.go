package main

import (
	"bytes"
	"testing"
)

func TestPrintSeedSanitisesForTerminals(t *testing.T) {
	t.Parallel()

	seed := "ab\u009b31mcd"

	var term bytes.Buffer
	printSeed(&term, seed, true)
	if got := term.String(); got != "ab�31mcd\n" {
		t.Fatalf("terminal output = %q", got)
	}

	var pipe bytes.Buffer
	printSeed(&pipe, seed, false)
	if got := pipe.String(); got != seed+"\n" {
		t.Fatalf("piped output = %q", got)
	}
}
