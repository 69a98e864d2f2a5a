// Package retrieval implements hybrid retrieval over the vector store: query
// embedding, nearest-neighbor and keyword search, accumulation of candidates
// across calls, and LLM-based reranking of the accumulated set.
package retrieval

import (
	"fmt"
	"strings"
)

// Entry is one accumulated candidate chunk with its enumeration index.
type Entry struct {
	Index int
	DocID string
	Text  string
	Meta  map[string]string
}

// Line renders the entry as its enumerated context line.
func (e Entry) Line() string {
	return fmt.Sprintf("%d. %s", e.Index, e.Text)
}

// Session is the accumulating candidate buffer for one logical query/turn.
// Indices are assigned from a running counter that is never reset, so they
// stay unique across repeated retrieval calls on the same session. A Session
// is owned by exactly one turn and is not safe for concurrent use.
type Session struct {
	counter int
	entries []Entry
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Append records a candidate and returns its assigned entry.
func (s *Session) Append(docID, text string, meta map[string]string) Entry {
	s.counter++
	entry := Entry{
		Index: s.counter,
		DocID: docID,
		Text:  cleanText(text),
		Meta:  meta,
	}
	s.entries = append(s.entries, entry)
	return entry
}

// Empty reports whether nothing has been accumulated yet.
func (s *Session) Empty() bool {
	return len(s.entries) == 0
}

// Len returns the number of accumulated entries.
func (s *Session) Len() int {
	return len(s.entries)
}

// Lookup finds the entry with the given enumeration index.
func (s *Session) Lookup(index int) (Entry, bool) {
	for _, e := range s.entries {
		if e.Index == index {
			return e, true
		}
	}
	return Entry{}, false
}

// Context renders the full accumulated buffer as enumerated lines, the form
// the reranker prompt consumes.
func (s *Session) Context() string {
	var sb strings.Builder
	for _, e := range s.entries {
		sb.WriteString(e.Line())
		sb.WriteString("\n")
	}
	return sb.String()
}

// cleanText strips markdown heading markers and embedded newlines so each
// chunk renders as a single enumerated line.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "#", "")
	text = strings.ReplaceAll(text, "\n", "")
	return strings.TrimSpace(text)
}
