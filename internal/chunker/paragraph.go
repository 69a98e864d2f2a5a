package chunker

import "strings"

const (
	// DefaultParagraphTargetSize is the size at which a running paragraph
	// buffer is emitted as a finished chunk, in characters.
	DefaultParagraphTargetSize = 512

	// DefaultParagraphOverlap is the number of trailing characters of an
	// emitted chunk that seed the next one.
	DefaultParagraphOverlap = 20

	// ParagraphMergeTag identifies the paragraph-merge strategy in chunk
	// metadata.
	ParagraphMergeTag = "ParagraphMerge"
)

// Fragment is a paragraph-level unit produced by an external document parser.
// Tables and images spotted mid-paragraph arrive pre-rendered as markdown and
// are attached to the finished chunk rather than embedded as separate chunks.
type Fragment struct {
	Text   string
	Page   int
	Tables []string
	Images []string
}

// Chunk is a finished paragraph-merge chunk. Text is what gets embedded;
// Rendered additionally carries the trailing table and image references and is
// what gets stored.
type Chunk struct {
	Text     string
	Rendered string
	Page     int
}

// ParagraphMerger greedily concatenates paragraph fragments into a running
// buffer, emitting it once it reaches the target size and seeding the next
// chunk with the tail of the previous one. Fragment boundaries are atomic: a
// fragment is never split across chunks.
type ParagraphMerger struct {
	targetSize int
	overlap    int
}

// NewParagraphMerger creates a paragraph-merge splitter. Non-positive
// arguments fall back to the defaults (512/20).
func NewParagraphMerger(targetSize, overlap int) *ParagraphMerger {
	if targetSize <= 0 {
		targetSize = DefaultParagraphTargetSize
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = DefaultParagraphOverlap
	}
	return &ParagraphMerger{targetSize: targetSize, overlap: overlap}
}

// Tag identifies this strategy.
func (m *ParagraphMerger) Tag() string { return ParagraphMergeTag }

// Merge concatenates fragments into chunks. The final partial buffer, if any,
// is emitted as a trailing chunk so no text is lost.
func (m *ParagraphMerger) Merge(fragments []Fragment) []Chunk {
	var chunks []Chunk
	var buf strings.Builder
	var tables, images []string
	page := 0
	prev := ""

	emit := func() {
		text := buf.String()
		if strings.TrimSpace(text) == "" && len(tables) == 0 && len(images) == 0 {
			return
		}
		rendered := text
		if len(images) > 0 {
			rendered += "\n\n" + strings.Join(images, "\n\n")
		}
		if len(tables) > 0 {
			rendered += "\n\n" + strings.Join(tables, "\n\n")
		}
		chunks = append(chunks, Chunk{Text: text, Rendered: rendered, Page: page})
		prev = text
		buf.Reset()
		tables, images = nil, nil
		page = 0
	}

	for _, frag := range fragments {
		if buf.Len() == 0 {
			// Seed with the tail of the previous chunk. Sliced on runes so a
			// multi-byte character is never cut in half.
			if tail := []rune(prev); len(tail) > m.overlap {
				buf.WriteString(string(tail[len(tail)-m.overlap:]))
			}
		}
		if page == 0 && frag.Page > 0 {
			page = frag.Page
		}
		buf.WriteString(frag.Text)
		tables = append(tables, frag.Tables...)
		images = append(images, frag.Images...)

		if buf.Len() >= m.targetSize {
			emit()
		}
	}
	emit()

	return chunks
}

// Split adapts the merger to the generic Splitter contract: raw text is
// segmented into paragraph fragments on blank lines, then merged.
func (m *ParagraphMerger) Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var fragments []Fragment
	for _, para := range strings.Split(raw, "\n\n") {
		para = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
		if para == "" {
			continue
		}
		fragments = append(fragments, Fragment{Text: para})
	}

	merged := m.Merge(fragments)
	texts := make([]string, 0, len(merged))
	for _, chunk := range merged {
		texts = append(texts, chunk.Rendered)
	}
	return texts
}

// Ensure ParagraphMerger implements Splitter.
var _ Splitter = (*ParagraphMerger)(nil)
