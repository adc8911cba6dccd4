// Package memory implements the semantic memory subsystem: an
// embedding-indexed store of generated exercises keyed by normalized
// request text, with exact-scan cosine search, a similarity threshold,
// and a topic-overlap guard that suppresses semantically-adjacent but
// topically-wrong matches.
package memory
