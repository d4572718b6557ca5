package wiki

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() *entity.WikiEntry {
	page := 4
	source := entity.WikiSource{
		ChunkId:        uuid.New(),
		DocumentId:     uuid.New(),
		DocumentTitle:  "Rivers of Europe",
		SourcePath:     "/docs/rivers.md",
		PageNumber:     &page,
		Section:        "Hydrology",
		RelevanceScore: 0.9,
		Excerpt:        "The Danube crosses ten countries.",
	}
	return &entity.WikiEntry{
		EntryId: uuid.New(),
		Title:   "Danube",
		Summary: "The Danube crosses ten countries.",
		Sections: []entity.WikiSection{
			{
				Heading:     "Hydrology",
				Content:     "The Danube crosses ten countries.",
				Confidence:  0.8,
				Sources:     []entity.WikiSource{source},
				Subsections: []entity.WikiSection{},
			},
		},
		AllSources:  []entity.WikiSource{source},
		GeneratedAt: time.Now().UTC(),
		Query:       "danube",
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(sampleEntry(), FormatMarkdown, true)
	require.NoError(t, err)

	assert.Contains(t, out, "# Danube")
	assert.Contains(t, out, "## Hydrology")
	assert.Contains(t, out, "## References")
	assert.Contains(t, out, `"Rivers of Europe", p. 4, Section: Hydrology`)
	assert.Contains(t, out, "*Generated from 1 sources*")
}

func TestRenderMarkdownWithoutSources(t *testing.T) {
	out, err := Render(sampleEntry(), FormatMarkdown, false)
	require.NoError(t, err)

	assert.NotContains(t, out, "## References")
	assert.NotContains(t, out, "*Sources:")
}

func TestRenderMarkdownContentsListOnlyForLargerEntries(t *testing.T) {
	entry := sampleEntry()
	out, err := Render(entry, FormatMarkdown, true)
	require.NoError(t, err)
	assert.NotContains(t, out, "## Contents")

	entry.Sections = append(entry.Sections,
		entity.WikiSection{Heading: "Geography", Subsections: []entity.WikiSection{}},
		entity.WikiSection{Heading: "History", Subsections: []entity.WikiSection{}},
	)
	out, err = Render(entry, FormatMarkdown, true)
	require.NoError(t, err)
	assert.Contains(t, out, "## Contents")
	assert.Contains(t, out, "[History](#history)")
}

func TestRenderHTMLEscapesSourceText(t *testing.T) {
	entry := sampleEntry()
	entry.Title = `<script>alert("x")</script>`
	entry.Sections[0].Content = `1 < 2 && "quoted"`

	out, err := Render(entry, FormatHTML, true)
	require.NoError(t, err)

	assert.NotContains(t, out, `<script>alert`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "1 &lt; 2 &amp;&amp;")
}

func TestRenderTextLayout(t *testing.T) {
	out, err := Render(sampleEntry(), FormatText, true)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "DANUBE\n======"))
	assert.Contains(t, out, "REFERENCES")
	assert.Contains(t, out, "[1]")
}

func TestRenderStructuredIsValidJSON(t *testing.T) {
	entry := sampleEntry()
	out, err := Render(entry, FormatStructured, true)
	require.NoError(t, err)

	var decoded entity.WikiEntry
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, entry.Title, decoded.Title)
	assert.Len(t, decoded.AllSources, 1)
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleEntry(), "pdf", true)
	assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestRenderIsPure(t *testing.T) {
	entry := sampleEntry()

	first, err := Render(entry, FormatMarkdown, false)
	require.NoError(t, err)
	second, err := Render(entry, FormatMarkdown, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Suppressing rendered citations never strips them from the entry.
	assert.Len(t, entry.AllSources, 1)
	assert.Len(t, entry.Sections[0].Sources, 1)
}
