package chunker

import (
	"strings"
	"testing"

	"wiki-craft-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func block(text string, ct entity.ContentType, hierarchy ...string) Block {
	return Block{Text: text, ContentType: ct, SectionHierarchy: hierarchy}
}

func TestSplitMergesSmallBlocksIntoOneChunk(t *testing.T) {
	c := New(Config{TargetSize: 1000, MinSize: 10, MaxSize: 2000, Overlap: 50})

	chunks := c.Split([]Block{
		block("Rivers form from rainfall.", entity.ContentTypeParagraph, "Geography"),
		block("They carve valleys over time.", entity.ContentTypeParagraph, "Geography"),
	})

	assert.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Rivers form from rainfall.")
	assert.Contains(t, chunks[0].Text, "They carve valleys over time.")
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, []string{"Geography"}, chunks[0].SectionHierarchy)
}

func TestSplitHeadingOpensNewChunk(t *testing.T) {
	c := New(Config{TargetSize: 1000, MinSize: 10, MaxSize: 2000, Overlap: 50})

	chunks := c.Split([]Block{
		block("Introduction", entity.ContentTypeHeading, "Introduction"),
		block("Opening paragraph with enough text to keep.", entity.ContentTypeParagraph, "Introduction"),
		block("Methods", entity.ContentTypeHeading, "Methods"),
		block("A second section's paragraph, also long enough.", entity.ContentTypeParagraph, "Methods"),
	})

	assert.Len(t, chunks, 2)
	assert.Equal(t, entity.ContentTypeHeading, chunks[0].ContentType)
	assert.Contains(t, chunks[0].Text, "Introduction")
	assert.Contains(t, chunks[1].Text, "Methods")
	assert.Equal(t, []string{"Methods"}, chunks[1].SectionHierarchy)
}

func TestSplitIndexesAreContiguous(t *testing.T) {
	c := New(Config{TargetSize: 120, MinSize: 10, MaxSize: 240, Overlap: 20})

	long := strings.Repeat("Water flows downhill toward the sea. ", 20)
	chunks := c.Split([]Block{block(long, entity.ContentTypeParagraph)})

	assert.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, ch.CharStart+len(ch.Text), ch.CharEnd)
		assert.LessOrEqual(t, len(ch.Text), 240)
	}
}

func TestSplitLargeBlockOverlaps(t *testing.T) {
	c := New(Config{TargetSize: 100, MinSize: 10, MaxSize: 200, Overlap: 40})

	long := "First sentence about deltas. Second sentence about estuaries. " +
		"Third sentence about floodplains. Fourth sentence about sediment. " +
		"Fifth sentence about erosion patterns in the lower basin."
	chunks := c.Split([]Block{block(long, entity.ContentTypeParagraph)})

	assert.Greater(t, len(chunks), 1)
	// Adjacent chunks share trailing text because of the overlap.
	tail := chunks[0].Text[len(chunks[0].Text)-20:]
	assert.Contains(t, chunks[1].Text, strings.TrimSpace(tail))
}

func TestSplitDropsTinyTrailingText(t *testing.T) {
	c := New(Config{TargetSize: 1000, MinSize: 100, MaxSize: 2000, Overlap: 50})

	chunks := c.Split([]Block{block("Too short.", entity.ContentTypeParagraph)})

	assert.Empty(t, chunks)
}

func TestSplitSentencesRoundTrips(t *testing.T) {
	text := "One sentence here. Another follows! A third? Yes."
	parts := splitSentences(text)

	assert.Equal(t, text, strings.Join(parts, ""))
	assert.Len(t, parts, 4)
}
