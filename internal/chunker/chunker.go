// Package chunker splits document text into bounded, overlapping chunks.
//
// Two interchangeable strategies are provided. The sentence-window splitter
// packs whole sentences into fixed-size windows; the paragraph-merge splitter
// greedily concatenates pre-segmented paragraph fragments. Every chunk records
// the strategy tag that produced it so retrieval can filter on a consistent
// configuration.
package chunker

import "strings"

// Splitter produces bounded text chunks from raw document text.
type Splitter interface {
	// Tag identifies the strategy. It is stored in each chunk's
	// meta.sentence_splitter field and must match at query time.
	Tag() string

	// Split returns the chunk texts for raw input. The result is non-empty
	// unless the input is empty, and no chunk is empty after trimming.
	Split(raw string) []string
}

// sentence terminators for both Latin and CJK text.
var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '；': true,
}

// splitSentences cuts text at sentence terminators, keeping the terminator
// with the sentence. A sentence is never split internally.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if sentenceEnders[r] {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
