package prompt

import "strings"

var markers = []string{TurnStart, TurnEnd, EndOfText}

// DefaultStopMarkers are the sequences that end an assistant turn.
func DefaultStopMarkers() []string {
	return []string{TurnEnd, TurnStart, EndOfText}
}

// leading labels a small model tends to echo before its answer
var roleLabels = []string{"assistant:", "assistant\n", "ai:", "bot:"}

// Sanitize cleans raw generated text: it drops echoed role labels at the
// start, ends the reply at the first template marker and trims surrounding
// whitespace. Everything else is returned untouched.
func Sanitize(raw string) string {
	s := strings.TrimLeft(raw, " \t\r\n")
	for {
		trimmed := strings.TrimLeft(strings.TrimPrefix(s, TurnStart), " \t\r\n")
		trimmed = trimLabel(trimmed)
		if trimmed == s {
			break
		}
		s = trimmed
	}
	cut := len(s)
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(s[:cut])
}

func trimLabel(s string) string {
	lower := strings.ToLower(s)
	for _, l := range roleLabels {
		if strings.HasPrefix(lower, l) {
			return strings.TrimLeft(s[len(l):], " \t\r\n")
		}
	}
	return s
}
