package service

import (
	"testing"

	"wiki-craft-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func chunkAt(index, start, end int, text string, hierarchy ...string) *entity.Chunk {
	return &entity.Chunk{
		ChunkIndex:       index,
		CharStart:        start,
		CharEnd:          end,
		Text:             text,
		SectionHierarchy: hierarchy,
	}
}

func TestReconstructTextSeparators(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []*entity.Chunk
		expected string
	}{
		{
			name: "adjacent ranges join directly",
			chunks: []*entity.Chunk{
				chunkAt(0, 0, 5, "Hello"),
				chunkAt(1, 5, 11, " world"),
			},
			expected: "Hello world",
		},
		{
			name: "single character gap becomes newline",
			chunks: []*entity.Chunk{
				chunkAt(0, 0, 5, "Hello"),
				chunkAt(1, 6, 11, "world"),
			},
			expected: "Hello\nworld",
		},
		{
			name: "wider gap becomes paragraph break",
			chunks: []*entity.Chunk{
				chunkAt(0, 0, 5, "Hello"),
				chunkAt(1, 7, 12, "world"),
			},
			expected: "Hello\n\nworld",
		},
		{
			name: "overlapping splits do not duplicate separators",
			chunks: []*entity.Chunk{
				chunkAt(0, 0, 10, "Hello ther"),
				chunkAt(1, 8, 12, "ere!"),
			},
			expected: "Hello therere!",
		},
		{
			name:     "empty document",
			chunks:   nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, reconstructText(tt.chunks))
		})
	}
}

func TestExtractSectionsDeduplicatesInOrder(t *testing.T) {
	chunks := []*entity.Chunk{
		chunkAt(0, 0, 10, "a", "Rivers"),
		chunkAt(1, 10, 20, "b", "Rivers", "Erosion"),
		chunkAt(2, 20, 30, "c", "Rivers"),
		chunkAt(3, 30, 40, "d"),
		chunkAt(4, 40, 50, "e", "Deltas"),
	}

	sections := extractSections(chunks)

	assert.Len(t, sections, 3)
	assert.Equal(t, []string{"Rivers"}, sections[0].Hierarchy)
	assert.Equal(t, []string{"Rivers", "Erosion"}, sections[1].Hierarchy)
	assert.Equal(t, []string{"Deltas"}, sections[2].Hierarchy)
}

func TestExtractSectionsEmptyForFlatDocument(t *testing.T) {
	chunks := []*entity.Chunk{
		chunkAt(0, 0, 10, "a"),
		chunkAt(1, 10, 20, "b"),
	}

	assert.Empty(t, extractSections(chunks))
	assert.NotNil(t, extractSections(chunks))
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"docs/water-cycle.md", "water-cycle"},
		{"report.pdf", "report"},
		{"nested/dir/file.tar.gz", "file.tar"},
		{"no-extension", "no-extension"},
		{".env", ".env"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleFromPath(tt.path))
		})
	}
}
