package memory

import (
	"regexp"
	"strings"
)

// MaxKeyLength bounds the normalized dedup key, in runes.
const MaxKeyLength = 200

var (
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize turns free-form request text into the dedup key: lowercased,
// punctuation stripped, whitespace runs collapsed to single spaces,
// trimmed, truncated to MaxKeyLength. Normalize is idempotent, so a key
// can be re-normalized safely.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = punctuationRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > MaxKeyLength {
		s = strings.TrimSpace(string(runes[:MaxKeyLength]))
	}
	return s
}
