package docbase

import (
	"strings"
	"unicode/utf8"
)

// SplitOptions configures text splitting.
type SplitOptions struct {
	// MaxLen is the maximum chunk length in bytes. Required.
	MaxLen int

	// Overlap is how many trailing bytes of each chunk are carried over
	// as leading context in the next chunk. Must be smaller than MaxLen.
	Overlap int
}

// DefaultSplitOptions returns the ingestion defaults.
// The window is sized well below typical embedding-model input limits.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{MaxLen: 1800, Overlap: 200}
}

// TextChunk is one split unit of a document's text.
type TextChunk struct {
	// Content is the chunk text, including any overlap prefix carried
	// over from the previous chunk.
	Content string

	// Heading is the nearest markdown heading preceding the chunk content.
	Heading string
}

// SplitReport describes degenerate cases encountered during splitting.
type SplitReport struct {
	// HardSplits counts oversized units (e.g., a giant table) that had to
	// be cut at the length limit with no semantic boundary.
	HardSplits int
}

// SplitText splits text into ordered chunks suitable for embedding.
//
// Whitespace is normalized first: CRLF becomes LF, runs of blank lines
// collapse to a single paragraph break, and surrounding whitespace is
// trimmed. Paragraph and heading boundaries are preferred; units that
// exceed the window fall back to sentence-boundary splitting; adjacent
// short units are joined to avoid degenerate tiny chunks. Each chunk after
// the first starts with the last Overlap bytes of the previous chunk, so
// relative to the normalized text, overlap only adds text, never drops it.
// Splitting is pure and deterministic for a given input and options.
func SplitText(text string, opts SplitOptions) ([]TextChunk, *SplitReport, error) {
	if opts.MaxLen <= 0 {
		return nil, nil, Errorf(EINVALID, "split max length must be positive")
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.MaxLen {
		return nil, nil, Errorf(EINVALID, "split overlap must be >= 0 and < max length")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &SplitReport{}, nil
	}

	// Reserve room for the overlap prefix and its separator so that no
	// chunk ever exceeds MaxLen.
	budget := opts.MaxLen
	if opts.Overlap > 0 {
		budget = opts.MaxLen - opts.Overlap - 1
	}

	report := &SplitReport{}
	blocks := splitBlocks(text)

	// First pass: reduce every block to pieces that fit the budget,
	// tracking the heading in effect for each piece.
	type piece struct {
		content string
		heading string
	}
	var pieces []piece
	heading := ""
	for _, block := range blocks {
		if isHeadingLine(block) {
			heading = strings.TrimSpace(strings.TrimLeft(block, "#"))
		}
		if len(block) <= budget {
			pieces = append(pieces, piece{content: block, heading: heading})
			continue
		}
		for _, sentence := range packSentences(splitSentences(block), budget) {
			if len(sentence) > budget {
				for _, part := range hardSplit(sentence, budget) {
					pieces = append(pieces, piece{content: part, heading: heading})
				}
				report.HardSplits++
				continue
			}
			pieces = append(pieces, piece{content: sentence, heading: heading})
		}
	}

	// Second pass: join adjacent pieces up to the budget.
	var chunks []TextChunk
	var cur strings.Builder
	curHeading := ""
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, TextChunk{Content: cur.String(), Heading: curHeading})
		cur.Reset()
	}
	for _, p := range pieces {
		if cur.Len() == 0 {
			curHeading = p.heading
			cur.WriteString(p.content)
			continue
		}
		if cur.Len()+2+len(p.content) <= budget {
			cur.WriteString("\n\n")
			cur.WriteString(p.content)
			continue
		}
		flush()
		curHeading = p.heading
		cur.WriteString(p.content)
	}
	flush()

	// Third pass: copy trailing context into the next chunk.
	if opts.Overlap > 0 {
		for i := len(chunks) - 1; i > 0; i-- {
			tail := overlapTail(chunks[i-1].Content, opts.Overlap)
			if tail != "" {
				chunks[i].Content = tail + "\n" + chunks[i].Content
			}
		}
	}

	return chunks, report, nil
}

// splitBlocks splits text into paragraph-level blocks. Heading lines become
// their own block so that chunk boundaries align with section starts.
// Consecutive single-newline lines (e.g., the steps of a numbered list)
// stay together in one block.
func splitBlocks(text string) []string {
	var blocks []string
	for _, para := range strings.Split(normalizeNewlines(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		var buf []string
		for _, line := range lines {
			if isHeadingLine(line) {
				if len(buf) > 0 {
					blocks = append(blocks, strings.Join(buf, "\n"))
					buf = buf[:0]
				}
				blocks = append(blocks, strings.TrimSpace(line))
				continue
			}
			buf = append(buf, line)
		}
		if len(buf) > 0 {
			blocks = append(blocks, strings.Join(buf, "\n"))
		}
	}
	return blocks
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	// Collapse 3+ newlines to paragraph breaks.
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

func isHeadingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	rest := strings.TrimLeft(trimmed, "#")
	return strings.HasPrefix(rest, " ") && strings.TrimSpace(rest) != ""
}

// splitSentences splits a block at sentence boundaries. The terminator
// stays attached to its sentence.
func splitSentences(block string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(block)-1; i++ {
		c := block[i]
		if (c == '.' || c == '!' || c == '?') && (block[i+1] == ' ' || block[i+1] == '\n') {
			sentences = append(sentences, strings.TrimSpace(block[start:i+1]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(block[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// packSentences joins consecutive sentences into runs no longer than budget.
// Sentences that alone exceed the budget pass through unchanged for the
// caller to hard-split.
func packSentences(sentences []string, budget int) []string {
	var out []string
	var cur strings.Builder
	for _, s := range sentences {
		if len(s) > budget {
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			out = append(out, s)
			continue
		}
		if cur.Len() == 0 {
			cur.WriteString(s)
			continue
		}
		if cur.Len()+1+len(s) <= budget {
			cur.WriteString(" ")
			cur.WriteString(s)
			continue
		}
		out = append(out, cur.String())
		cur.Reset()
		cur.WriteString(s)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// hardSplit cuts text into budget-sized parts at rune boundaries.
func hardSplit(text string, budget int) []string {
	var parts []string
	for len(text) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// overlapTail returns the last n bytes of s, backed off to a rune boundary.
func overlapTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
