// Package textx provides the free-text sanitization shared by every
// guestbook mutation path.
package textx

import "strings"

// Ellipsis is appended when a value is truncated.
const Ellipsis = "…"

// Clamp trims surrounding whitespace and bounds s to max runes. A value that
// fits after trimming is returned unchanged; a longer one is cut to max-1
// runes with an ellipsis appended, so the result never exceeds max runes.
// Rune-based so multi-byte text and emoji are not split mid-character.
//
// Clamp is idempotent: Clamp(Clamp(s, n), n) == Clamp(s, n) for n >= 1.
func Clamp(s string, max int) string {
	trimmed := strings.TrimSpace(s)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return string(runes[:max-1]) + Ellipsis
}
