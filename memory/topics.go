package memory

import "strings"

// topicVocabulary is the fixed set of mental-health-relevant terms the
// topic guard recognizes. Multi-word entries match as substrings.
var topicVocabulary = []string{
	"anxiety", "depression", "stress", "panic", "phobia", "ocd", "ptsd",
	"trauma", "grief", "anger", "sleep", "insomnia", "eating", "addiction",
	"relationship", "social", "work", "school", "exam", "presentation",
	"public speaking", "confidence", "self esteem", "loneliness", "guilt",
	"shame", "worry", "fear", "anger management", "mindfulness", "relaxation",
}

// ExtractTopics returns the recognized topic keywords present in text.
func ExtractTopics(text string) map[string]struct{} {
	lower := strings.ToLower(text)
	topics := make(map[string]struct{})
	for _, topic := range topicVocabulary {
		if strings.Contains(lower, topic) {
			topics[topic] = struct{}{}
		}
	}
	return topics
}

// topicsIntersect reports whether the two topic sets share a keyword.
func topicsIntersect(a, b map[string]struct{}) bool {
	for t := range a {
		if _, ok := b[t]; ok {
			return true
		}
	}
	return false
}
