package ingest

import (
	"strings"
	"unicode/utf8"
)

// Split cuts text into chunks of at most chunkSize bytes, with adjacent
// chunks sharing roughly overlap bytes of boundary content. Every chunk is a
// contiguous substring of the input, so joining chunks with their overlaps
// removed yields the original text. Split points are picked in preference
// order: paragraph break, sentence end, word boundary, raw cut.
func Split(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		if len(text)-start <= chunkSize {
			chunks = append(chunks, text[start:])
			return chunks
		}
		cut := splitPoint(text, start, start+chunkSize)
		chunks = append(chunks, text[start:cut])

		next := cut - overlap
		// Overlap must never swallow a whole chunk; fall back to a
		// non-overlapping cut to guarantee forward progress.
		if next <= start {
			next = cut
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
}

// splitPoint returns the end index of the chunk beginning at start, at most
// limit, preferring the highest-ranked boundary present in the window.
func splitPoint(text string, start, limit int) int {
	window := text[start:limit]

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return start + i + 2
	}
	if i := lastSentenceEnd(window); i > 0 {
		return start + i
	}
	if i := strings.LastIndexAny(window, " \n\t"); i > 0 {
		return start + i + 1
	}
	// No boundary in the window: raw cut, kept on a rune boundary.
	for limit > start+1 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}

// lastSentenceEnd finds the index just past the last sentence terminator
// that is followed by whitespace, or 0 when the window holds none.
func lastSentenceEnd(window string) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] != ' ' && window[i] != '\n' {
			continue
		}
		switch window[i-1] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return 0
}
