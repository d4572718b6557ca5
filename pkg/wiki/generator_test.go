package wiki

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results []entity.SearchResult
}

func (f *fakeSearcher) Search(_ context.Context, query retrieval.Query) (*retrieval.Response, error) {
	out := f.results
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return &retrieval.Response{
		Query:        query.Query,
		Results:      out,
		TotalResults: len(out),
	}, nil
}

func result(text string, score float64, docId uuid.UUID, chunkIndex int, hierarchy ...string) entity.SearchResult {
	return entity.SearchResult{
		ChunkId: uuid.New(),
		Text:    text,
		Score:   score,
		Metadata: entity.ChunkMetadata{
			DocumentId:       docId,
			DocumentTitle:    "Rivers of Europe",
			SourcePath:       "/docs/rivers.md",
			SectionHierarchy: hierarchy,
			ChunkIndex:       chunkIndex,
		},
	}
}

func TestGenerateClustersByTopHeading(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()
	s := NewSynthesizer(&fakeSearcher{results: []entity.SearchResult{
		result("The Danube crosses ten countries.", 0.9, docA, 0, "Introduction"),
		result("The Rhine begins in the Alps.", 0.85, docB, 0, "Introduction"),
		result("Dams changed seasonal flow patterns.", 0.7, docA, 4, "Hydrology"),
	}}, Options{})

	entry, err := s.Generate(context.Background(), "rivers", 10)
	require.NoError(t, err)

	require.Len(t, entry.Sections, 2)
	// Two agreeing introduction chunks outrank the single hydrology one.
	assert.Equal(t, "Introduction", entry.Sections[0].Heading)
	assert.Equal(t, "Hydrology", entry.Sections[1].Heading)
	assert.Greater(t, entry.Sections[0].Confidence, entry.Sections[1].Confidence)
	assert.Contains(t, entry.Sections[0].Content, "Danube")
	assert.Contains(t, entry.Sections[0].Content, "Rhine")
}

func TestGenerateNoHierarchyFallsBackToOverview(t *testing.T) {
	docId := uuid.New()
	s := NewSynthesizer(&fakeSearcher{results: []entity.SearchResult{
		result("Plain text with no headings.", 0.8, docId, 0),
	}}, Options{})

	entry, err := s.Generate(context.Background(), "anything", 10)
	require.NoError(t, err)

	require.Len(t, entry.Sections, 1)
	assert.Equal(t, "Overview", entry.Sections[0].Heading)
}

func TestGenerateZeroResultsIsNotAnError(t *testing.T) {
	s := NewSynthesizer(&fakeSearcher{}, Options{})

	entry, err := s.Generate(context.Background(), "unknown topic", 10)
	require.NoError(t, err)

	assert.Equal(t, "No relevant information found in the knowledge base.", entry.Summary)
	assert.Empty(t, entry.Sections)
	assert.Empty(t, entry.AllSources)
	assert.Equal(t, "unknown topic", entry.Query)
}

func TestGenerateEmptyQueryRejected(t *testing.T) {
	s := NewSynthesizer(&fakeSearcher{}, Options{})

	_, err := s.Generate(context.Background(), "   ", 10)
	assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestGenerateSubsectionsCollapseBelowTwoMembers(t *testing.T) {
	docId := uuid.New()
	s := NewSynthesizer(&fakeSearcher{results: []entity.SearchResult{
		result("Tributaries feed the main stem.", 0.9, docId, 0, "Hydrology", "Tributaries"),
		result("The Inn joins at Passau.", 0.85, docId, 1, "Hydrology", "Tributaries"),
		result("A lone aquifer note.", 0.6, docId, 2, "Hydrology", "Groundwater"),
	}}, Options{})

	entry, err := s.Generate(context.Background(), "hydrology", 10)
	require.NoError(t, err)

	require.Len(t, entry.Sections, 1)
	section := entry.Sections[0]
	require.Len(t, section.Subsections, 1)
	assert.Equal(t, "Tributaries", section.Subsections[0].Heading)
	// The single groundwater member folded into the parent.
	assert.Contains(t, section.Content, "aquifer")
}

func TestGenerateDeduplicatesChunksBeforeClustering(t *testing.T) {
	docId := uuid.New()
	dup := result("Repeated chunk.", 0.9, docId, 0, "Introduction")
	s := NewSynthesizer(&fakeSearcher{results: []entity.SearchResult{
		dup,
		dup,
	}}, Options{})

	entry, err := s.Generate(context.Background(), "rivers", 10)
	require.NoError(t, err)

	require.Len(t, entry.AllSources, 1)
	assert.Equal(t, 1, strings.Count(entry.Sections[0].Content, "Repeated chunk."))
}

func TestAllSourcesFirstAppearanceDepthFirst(t *testing.T) {
	docId := uuid.New()
	s := NewSynthesizer(&fakeSearcher{results: []entity.SearchResult{
		result("Top level content.", 0.95, docId, 0, "Geography"),
		result("Sub content one.", 0.9, docId, 1, "Geography", "Alps"),
		result("Sub content two.", 0.85, docId, 2, "Geography", "Alps"),
	}}, Options{})

	entry, err := s.Generate(context.Background(), "geography", 10)
	require.NoError(t, err)

	require.Len(t, entry.AllSources, 3)
	// Parent-level source precedes subsection sources.
	assert.Equal(t, "Top level content.", entry.AllSources[0].Excerpt)
}

func TestConfidenceSingleWeakBelowSeveralStrong(t *testing.T) {
	weak := confidence([]entity.SearchResult{{Score: 0.5}})
	strong := confidence([]entity.SearchResult{{Score: 0.85}, {Score: 0.8}, {Score: 0.8}})

	assert.Less(t, weak, strong)
	assert.GreaterOrEqual(t, weak, 0.0)
	assert.LessOrEqual(t, strong, 1.0)
}

func TestConfidenceMonotonicInScores(t *testing.T) {
	low := confidence([]entity.SearchResult{{Score: 0.4}, {Score: 0.3}})
	high := confidence([]entity.SearchResult{{Score: 0.9}, {Score: 0.8}})

	assert.Less(t, low, high)
}

func TestExcerptKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 50)

	cut := excerpt(text, 200)

	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, strings.Repeat("a", 199)+"...", cut)
}

func TestTruncateOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		expected string
	}{
		{"ascii fits", "hello", 10, "hello"},
		{"ascii cut", "hello", 3, "hel"},
		{"multibyte at boundary", "aé", 2, "a"},
		{"multibyte kept", "aé", 3, "aé"},
		{"wide rune", "日本語", 4, "日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.text, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestDeriveTitleStripsQuestionScaffolding(t *testing.T) {
	assert.Equal(t, "Ocean Currents", deriveTitle("what is ocean currents?"))
	assert.Equal(t, "Build A Raft", deriveTitle("How to build a raft"))
	assert.Equal(t, "Glaciers", deriveTitle("glaciers"))
}

func TestGenerateSectionZeroResults(t *testing.T) {
	s := NewSynthesizer(&fakeSearcher{}, Options{})

	section, err := s.GenerateSection(context.Background(), "Estuaries", "", 5)
	require.NoError(t, err)

	assert.Equal(t, "Estuaries", section.Heading)
	assert.Equal(t, "No information available.", section.Content)
	assert.Zero(t, section.Confidence)
}

func TestCompareGroupsByDocument(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()
	s := NewSynthesizer(&fakeSearcher{results: []entity.SearchResult{
		result("Doc A first.", 0.9, docA, 0, "Intro"),
		result("Doc B first.", 0.85, docB, 0, "Intro"),
		result("Doc A second.", 0.8, docA, 1, "Intro"),
		result("Doc A third.", 0.75, docA, 2, "Intro"),
	}}, Options{})

	comparisons, err := s.Compare(context.Background(), "topic", 2)
	require.NoError(t, err)

	require.Len(t, comparisons, 2)
	assert.Equal(t, docA, comparisons[0].DocumentId)
	assert.Len(t, comparisons[0].Excerpts, 2)
	assert.Len(t, comparisons[1].Excerpts, 1)
}
