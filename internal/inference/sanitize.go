package inference

import "strings"

// ReplacementChar stands in for characters a terminal would interpret.
const ReplacementChar = '\uFFFD'

// SanitizeForDisplay replaces C0 and C1 control characters other than
// newline and tab. The vocabulary holds most of the C1 range, and a raw
// U+009B is a CSI introducer on many terminals.
func SanitizeForDisplay(text string) string {
	if !strings.ContainsFunc(text, isUnsafeControl) {
		return text
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return ReplacementChar
		}
		return r
	}, text)
}

func isUnsafeControl(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r < 0x20 || r == 0x7f:
		return true
	case r >= 0x80 && r <= 0x9f:
		return true
	}
	return false
}
