package inference

import (
	"fmt"
	"time"
)

// Status lines shown by the demo page and the CLI.
const (
	StatusStandingBy = "Standing by."
	StatusRunning    = "Running inference"
)

func StatusModelAvailable(path string) string {
	return "Model available: " + path
}

func StatusModelLoaded(path string) string {
	return "Model loaded: " + path
}

// StatusGenerated formats a finished run the way the demo page reports it.
func StatusGenerated(elapsed time.Duration, text string) string {
	return fmt.Sprintf("Generated in %.2f Result: %s", elapsed.Seconds(), text)
}
