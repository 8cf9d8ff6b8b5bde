package docbase_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_short_note_yields_one_chunk(t *testing.T) {
	t.Parallel()

	note := strings.Repeat("check the revision before you release it ", 7) // ~50 words

	chunks, report, err := docbase.SplitText(note, docbase.SplitOptions{MaxLen: 500, Overlap: 50})

	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Zero(t, report.HardSplits)
	assert.Equal(t, strings.TrimSpace(note), chunks[0].Content)
}

func TestSplitText_long_guide_overlaps_chunks(t *testing.T) {
	t.Parallel()

	// ~2000 words of sentence-structured text.
	var sb strings.Builder
	for i := 0; i < 250; i++ {
		sb.WriteString("Open the structure tab and select the assembly you want to modify. ")
	}
	guide := sb.String()

	const overlap = 50
	chunks, report, err := docbase.SplitText(guide, docbase.SplitOptions{MaxLen: 500, Overlap: overlap})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chunks), 4)
	assert.Zero(t, report.HardSplits)

	for _, c := range chunks {
		assert.NotEmpty(t, c.Content)
		assert.LessOrEqual(t, len(c.Content), 500)
	}

	// Each chunk begins with the trailing context of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		tail := prev[len(prev)-overlap:]
		assert.Equal(t, tail, chunks[i].Content[:overlap])
	}
}

func TestSplitText_overlap_only_adds_text(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("Every workflow transition must be documented for audit purposes. ")
	}
	text := strings.TrimSpace(sb.String())

	chunks, _, err := docbase.SplitText(text, docbase.SplitOptions{MaxLen: 400, Overlap: 40})
	require.NoError(t, err)

	total := 0
	for _, c := range chunks {
		total += len(c.Content)
	}
	assert.GreaterOrEqual(t, total, len(text))
}

func TestSplitText_covers_normalized_text_with_blank_line_runs(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Every workflow transition must be documented for audit purposes.")
		sb.WriteString("\r\n\n\n\n")
	}
	text := sb.String()

	chunks, _, err := docbase.SplitText(text, docbase.SplitOptions{MaxLen: 400, Overlap: 40})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// The splitter normalizes whitespace first: CRLF to LF, blank-line
	// runs collapsed to one paragraph break, surrounding whitespace
	// trimmed. The coverage guarantee holds against that normalized form.
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	for strings.Contains(normalized, "\n\n\n") {
		normalized = strings.ReplaceAll(normalized, "\n\n\n", "\n\n")
	}
	normalized = strings.TrimSpace(normalized)

	total := 0
	for _, c := range chunks {
		total += len(c.Content)
	}
	assert.GreaterOrEqual(t, total, len(normalized))
}

func TestSplitText_prefers_paragraph_boundaries(t *testing.T) {
	t.Parallel()

	text := "First paragraph about lifecycles.\n\nSecond paragraph about workflows.\n\nThird paragraph about baselines."

	chunks, _, err := docbase.SplitText(text, docbase.SplitOptions{MaxLen: 200, Overlap: 0})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "First paragraph")
	assert.Contains(t, chunks[0].Content, "Third paragraph")
}

func TestSplitText_keeps_numbered_steps_together(t *testing.T) {
	t.Parallel()

	steps := "1. Open the change notice.\n2. Add affected objects.\n3. Route for approval."
	text := "Intro paragraph.\n\n" + steps

	chunks, _, err := docbase.SplitText(text, docbase.SplitOptions{MaxLen: 120, Overlap: 0})

	require.NoError(t, err)
	var found bool
	for _, c := range chunks {
		if strings.Contains(c.Content, steps) {
			found = true
		}
	}
	assert.True(t, found, "numbered steps should stay in a single chunk")
}

func TestSplitText_tracks_headings(t *testing.T) {
	t.Parallel()

	text := "# Getting Started\n\nInstall the client.\n\n# Administration\n\nConfigure the vault."

	chunks, _, err := docbase.SplitText(text, docbase.SplitOptions{MaxLen: 60, Overlap: 0})

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Getting Started", chunks[0].Heading)
	last := chunks[len(chunks)-1]
	assert.Equal(t, "Administration", last.Heading)
}

func TestSplitText_hard_splits_oversized_unit(t *testing.T) {
	t.Parallel()

	// A single unbreakable run with no sentence boundaries.
	giant := strings.Repeat("cell|", 300)

	chunks, report, err := docbase.SplitText(giant, docbase.SplitOptions{MaxLen: 200, Overlap: 0})

	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, 1, report.HardSplits)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 200)
		assert.NotEmpty(t, c.Content)
	}
}

func TestSplitText_empty_input(t *testing.T) {
	t.Parallel()

	chunks, report, err := docbase.SplitText("   \n\n  ", docbase.SplitOptions{MaxLen: 100, Overlap: 10})

	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Zero(t, report.HardSplits)
}

func TestSplitText_rejects_invalid_options(t *testing.T) {
	t.Parallel()

	_, _, err := docbase.SplitText("text", docbase.SplitOptions{MaxLen: 0, Overlap: 0})
	assert.Equal(t, docbase.EINVALID, docbase.ErrorCode(err))

	_, _, err = docbase.SplitText("text", docbase.SplitOptions{MaxLen: 100, Overlap: 100})
	assert.Equal(t, docbase.EINVALID, docbase.ErrorCode(err))
}

func TestSplitText_deterministic(t *testing.T) {
	t.Parallel()

	text := "# Title\n\n" + strings.Repeat("A sentence that repeats itself for testing purposes. ", 60)
	opts := docbase.SplitOptions{MaxLen: 300, Overlap: 30}

	a, _, err := docbase.SplitText(text, opts)
	require.NoError(t, err)
	b, _, err := docbase.SplitText(text, opts)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
