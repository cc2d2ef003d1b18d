// Package chunker divides an oversized transcript into bounded segments.
// Chunks are contiguous and non-overlapping: concatenating them in order
// reproduces the input exactly.
package chunker

import "unicode"

// DefaultBudget is the max chunk size in characters (~15 minutes of speech).
const DefaultBudget = 20000

// Chunk is an ordered slice of the transcript. Start and End are rune
// offsets into the original text, End exclusive.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// Split cuts transcript into chunks of at most budget characters,
// preferring paragraph, newline and sentence boundaries near the limit.
// The lookback window is half the budget; with no boundary inside it the
// cut lands on the hard character limit. Empty input yields no chunks.
func Split(transcript string, budget int) []Chunk {
	if budget <= 0 {
		budget = DefaultBudget
	}
	runes := []rune(transcript)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= budget {
		return []Chunk{{Index: 0, Start: 0, End: len(runes), Text: transcript}}
	}

	var chunks []Chunk
	pos := 0
	for pos < len(runes) {
		remaining := len(runes) - pos
		if remaining <= budget {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Start: pos,
				End:   len(runes),
				Text:  string(runes[pos:]),
			})
			break
		}

		cut := boundary(runes, pos, pos+budget)
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: pos,
			End:   cut,
			Text:  string(runes[pos:cut]),
		})
		pos = cut
	}
	return chunks
}

// boundary scans backward from the budget cutoff for the best split point:
// paragraph break, then newline, then sentence-ending punctuation, then any
// whitespace. Candidates below lo+(hi-lo)/2 are rejected; the hard limit
// wins when nothing qualifies.
func boundary(runes []rune, lo, hi int) int {
	floor := lo + (hi-lo)/2

	for i := hi - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := hi - 1; i >= floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	for i := hi - 2; i >= floor; i-- {
		if sentenceEnders[runes[i]] && unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}
	for i := hi - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return hi
}
