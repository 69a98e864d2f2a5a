package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewSentenceSplitter_Defaults(t *testing.T) {
	s := NewSentenceSplitter(0, -1)

	if s.chunkSize != DefaultChunkSize {
		t.Errorf("expected default chunk size %d, got %d", DefaultChunkSize, s.chunkSize)
	}
	if s.overlap != DefaultChunkOverlap {
		t.Errorf("expected default overlap %d, got %d", DefaultChunkOverlap, s.overlap)
	}
	if s.Tag() != SentenceWindowTag {
		t.Errorf("expected tag %q, got %q", SentenceWindowTag, s.Tag())
	}
}

func TestSentenceSplitter_EmptyContent(t *testing.T) {
	s := NewSentenceSplitter(0, 0)

	if chunks := s.Split(""); chunks != nil {
		t.Errorf("expected nil for empty content, got %v", chunks)
	}
	if chunks := s.Split("   \n\n  "); chunks != nil {
		t.Errorf("expected nil for whitespace content, got %v", chunks)
	}
}

func TestSentenceSplitter_SingleSentence(t *testing.T) {
	s := NewSentenceSplitter(0, 0)

	chunks := s.Split("One short sentence.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "One short sentence." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSentenceSplitter_SentencesNeverSplit(t *testing.T) {
	s := NewSentenceSplitter(40, 10)

	text := "The first sentence is here. The second sentence follows it. A third one closes."
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Every chunk must consist of whole sentences: it ends with a terminator.
	for i, c := range chunks {
		last := []rune(c)[len([]rune(c))-1]
		if !sentenceEnders[last] {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, c)
		}
	}
}

func TestSentenceSplitter_OverlapCarriesTrailingSentences(t *testing.T) {
	s := NewSentenceSplitter(50, 25)

	text := "Alpha sentence one. Bravo sentence two. Charlie sentence three. Delta sentence four."
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// A later chunk must start with a sentence already seen in the previous
	// chunk.
	found := false
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitAfter(chunks[i], ".")[0]
		if strings.Contains(chunks[i-1], strings.TrimSpace(first)) {
			found = true
		}
	}
	if !found {
		t.Errorf("no overlap between consecutive chunks: %v", chunks)
	}
}

func TestSentenceSplitter_StripsNewlines(t *testing.T) {
	s := NewSentenceSplitter(0, 0)

	chunks := s.Split("A sentence\nwith a break. Another\none here.")
	for _, c := range chunks {
		if strings.Contains(c, "\n") {
			t.Errorf("chunk contains newline: %q", c)
		}
	}
}

func TestSentenceSplitter_CJKTerminators(t *testing.T) {
	sentences := splitSentences("これは文です。二つ目の文！三つ目？")
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
}

func TestSplitSentences_TrailingFragment(t *testing.T) {
	sentences := splitSentences("Complete sentence. Trailing fragment without terminator")
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[1] != "Trailing fragment without terminator" {
		t.Errorf("unexpected trailing sentence: %q", sentences[1])
	}
}

func TestParagraphMerger_Defaults(t *testing.T) {
	m := NewParagraphMerger(0, -1)

	if m.targetSize != DefaultParagraphTargetSize {
		t.Errorf("expected default target size %d, got %d", DefaultParagraphTargetSize, m.targetSize)
	}
	if m.Tag() != ParagraphMergeTag {
		t.Errorf("expected tag %q, got %q", ParagraphMergeTag, m.Tag())
	}
}

func TestParagraphMerger_MergesSmallFragments(t *testing.T) {
	m := NewParagraphMerger(100, 10)

	fragments := []Fragment{
		{Text: "Short paragraph one.", Page: 1},
		{Text: "Short paragraph two.", Page: 1},
		{Text: "Short paragraph three.", Page: 2},
	}
	chunks := m.Merge(fragments)

	if len(chunks) != 1 {
		t.Fatalf("expected fragments merged into 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "one.") || !strings.Contains(chunks[0].Text, "three.") {
		t.Errorf("merged chunk missing fragments: %q", chunks[0].Text)
	}
}

func TestParagraphMerger_EmitsAtTargetSize(t *testing.T) {
	m := NewParagraphMerger(50, 10)

	long := strings.Repeat("word ", 20)
	fragments := []Fragment{
		{Text: long, Page: 1},
		{Text: long, Page: 2},
	}
	chunks := m.Merge(fragments)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
}

func TestParagraphMerger_TablesAttachedToRendered(t *testing.T) {
	m := NewParagraphMerger(1000, 10)

	fragments := []Fragment{
		{Text: "A paragraph with a table.", Page: 3, Tables: []string{"| a | b |"}},
	}
	chunks := m.Merge(fragments)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Rendered, "| a | b |") {
		t.Errorf("rendered form missing table: %q", chunks[0].Rendered)
	}
	if strings.Contains(chunks[0].Text, "| a | b |") {
		t.Errorf("embedded text should not contain the table: %q", chunks[0].Text)
	}
	if chunks[0].Page != 3 {
		t.Errorf("expected page 3, got %d", chunks[0].Page)
	}
}

func TestParagraphMerger_MultiByteOverlap(t *testing.T) {
	m := NewParagraphMerger(30, 10)

	fragments := []Fragment{
		{Text: strings.Repeat("日本語テキスト。", 4), Page: 1},
		{Text: "続きの段落。", Page: 1},
	}
	chunks := m.Merge(fragments)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The overlap seed is rune-safe: no chunk may contain a split character.
	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c.Text)
		}
	}
}

func TestParagraphMerger_SplitAdapter(t *testing.T) {
	m := NewParagraphMerger(100, 10)

	texts := m.Split("First paragraph here.\n\nSecond paragraph here.\n\n\n\nThird.")
	if len(texts) == 0 {
		t.Fatal("expected chunks from paragraph-separated input")
	}
	if m.Split("") != nil {
		t.Error("expected nil for empty input")
	}
}
