package chunker

import "strings"

const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 512

	// DefaultChunkOverlap is the overlap between consecutive chunks in
	// characters.
	DefaultChunkOverlap = 128

	// SentenceWindowTag identifies the sentence-window strategy in chunk
	// metadata.
	SentenceWindowTag = "SentenceWindow"
)

// SentenceSplitter packs whole sentences into windows of roughly ChunkSize
// characters, seeding each window with trailing sentences of the previous one
// to preserve cross-boundary context. Newlines are stripped before splitting.
type SentenceSplitter struct {
	chunkSize int
	overlap   int
}

// NewSentenceSplitter creates a sentence-window splitter. Non-positive
// arguments fall back to the defaults (512/128).
func NewSentenceSplitter(chunkSize, overlap int) *SentenceSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 4
		}
	}
	return &SentenceSplitter{chunkSize: chunkSize, overlap: overlap}
}

// Tag identifies this strategy.
func (s *SentenceSplitter) Tag() string { return SentenceWindowTag }

// Split returns sentence-bounded chunks of normalized text.
func (s *SentenceSplitter) Split(raw string) []string {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\n", ""))
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var window []string
	windowLen := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(window, " "))

		// Seed the next window with trailing sentences up to the overlap.
		var carry []string
		carryLen := 0
		for i := len(window) - 1; i >= 0 && carryLen < s.overlap; i-- {
			carry = append([]string{window[i]}, carry...)
			carryLen += len(window[i])
		}
		// The carry must leave room to grow, otherwise the window never
		// advances past a run of long sentences.
		if carryLen >= s.chunkSize {
			carry, carryLen = nil, 0
		}
		window, windowLen = carry, carryLen
	}

	for _, sentence := range sentences {
		if windowLen > 0 && windowLen+len(sentence) > s.chunkSize {
			flush()
		}
		window = append(window, sentence)
		windowLen += len(sentence)
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, " "))
	}

	// Drop a trailing chunk that is pure overlap of the previous one.
	if len(chunks) > 1 {
		last := chunks[len(chunks)-1]
		prev := chunks[len(chunks)-2]
		if strings.HasSuffix(prev, last) {
			chunks = chunks[:len(chunks)-1]
		}
	}

	return chunks
}

// Ensure SentenceSplitter implements Splitter.
var _ Splitter = (*SentenceSplitter)(nil)
