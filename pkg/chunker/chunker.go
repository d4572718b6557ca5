package chunker

import (
	"regexp"
	"strings"

	"wiki-craft-be/internal/entity"
)

// Block is one structural unit of a parsed document, in document order.
type Block struct {
	Text             string
	ContentType      entity.ContentType
	PageNumber       *int
	SectionHierarchy []string
	Position         int
}

// Chunk is a retrievable slice of document text with its provenance.
// Ids and embeddings are attached by the caller after chunking.
type Chunk struct {
	Text             string
	ContentType      entity.ContentType
	PageNumber       *int
	SectionHierarchy []string
	ParagraphIndex   int
	ChunkIndex       int
	CharStart        int
	CharEnd          int
}

type Config struct {
	TargetSize int // target chunk size in characters
	MinSize    int // chunks below this are folded into the next one
	MaxSize    int // hard ceiling before a block is force-split
	Overlap    int // characters carried over between adjacent splits
}

// Chunker splits parsed blocks into chunks sized for embedding.
//
// Headings start new chunks, blocks merge up to the target size, and
// oversized blocks are split on sentence boundaries with overlap so
// continuity survives the cut.
type Chunker struct {
	cfg Config
}

func New(cfg Config) *Chunker {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = 1000
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = 100
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 2000
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	return &Chunker{cfg: cfg}
}

// Split turns ordered blocks into numbered chunks with contiguous char ranges.
func (c *Chunker) Split(blocks []Block) []Chunk {
	var chunks []Chunk
	currentText := ""
	var currentBlocks []Block
	charOffset := 0

	for _, block := range blocks {
		// Headings open new chunks so a section never starts mid-chunk.
		if block.ContentType == entity.ContentTypeHeading {
			if len(strings.TrimSpace(currentText)) >= c.cfg.MinSize {
				chunks = append(chunks, c.createChunks(currentText, currentBlocks, charOffset)...)
				charOffset += len(currentText)
			}
			currentText = block.Text + "\n\n"
			currentBlocks = []Block{block}
			continue
		}

		blockText := strings.TrimSpace(block.Text)
		if blockText == "" {
			continue
		}

		potentialText := currentText + blockText + "\n\n"

		if len(potentialText) > c.cfg.MaxSize {
			if len(strings.TrimSpace(currentText)) >= c.cfg.MinSize {
				chunks = append(chunks, c.createChunks(currentText, currentBlocks, charOffset)...)
				charOffset += len(currentText)
			}

			if len(blockText) > c.cfg.MaxSize {
				chunks = append(chunks, c.splitLargeBlock(block, charOffset)...)
				charOffset += len(blockText)
				currentText = ""
				currentBlocks = nil
			} else {
				currentText = blockText + "\n\n"
				currentBlocks = []Block{block}
			}
		} else {
			currentText = potentialText
			currentBlocks = append(currentBlocks, block)
		}
	}

	if len(strings.TrimSpace(currentText)) >= c.cfg.MinSize {
		chunks = append(chunks, c.createChunks(currentText, currentBlocks, charOffset)...)
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
	return chunks
}

func (c *Chunker) createChunks(text string, blocks []Block, charOffset int) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if len(text) <= c.cfg.TargetSize {
		return []Chunk{c.makeChunk(text, blocks, charOffset)}
	}

	var chunks []Chunk
	sentences := splitSentences(text)
	currentText := ""
	chunkStart := charOffset

	for _, sentence := range sentences {
		if len(currentText)+len(sentence) > c.cfg.TargetSize {
			if currentText != "" {
				relevant := findRelevantBlocks(currentText, blocks)
				chunks = append(chunks, c.makeChunk(strings.TrimSpace(currentText), relevant, chunkStart))

				overlap := c.overlapTail(currentText)
				chunkStart += len(currentText) - len(overlap)
				currentText = overlap + sentence
			} else {
				currentText = sentence
			}
		} else {
			currentText += sentence
		}
	}

	if strings.TrimSpace(currentText) != "" {
		relevant := findRelevantBlocks(currentText, blocks)
		chunks = append(chunks, c.makeChunk(strings.TrimSpace(currentText), relevant, chunkStart))
	}

	return chunks
}

func (c *Chunker) splitLargeBlock(block Block, charOffset int) []Chunk {
	text := strings.TrimSpace(block.Text)
	sentences := splitSentences(text)

	var chunks []Chunk
	currentText := ""
	currentStart := charOffset

	for _, sentence := range sentences {
		if len(currentText)+len(sentence) > c.cfg.TargetSize {
			if currentText != "" {
				chunks = append(chunks, c.makeChunk(strings.TrimSpace(currentText), []Block{block}, currentStart))
				overlap := c.overlapTail(currentText)
				currentStart += len(currentText) - len(overlap)
				currentText = overlap + sentence
			} else {
				// Single sentence exceeds the ceiling, force split
				if len(sentence) > c.cfg.MaxSize {
					sentence = sentence[:c.cfg.MaxSize]
				}
				currentText = sentence
			}
		} else {
			currentText += sentence
		}
	}

	if strings.TrimSpace(currentText) != "" {
		chunks = append(chunks, c.makeChunk(strings.TrimSpace(currentText), []Block{block}, currentStart))
	}

	return chunks
}

func (c *Chunker) makeChunk(text string, blocks []Block, charOffset int) Chunk {
	chunk := Chunk{
		Text:        text,
		ContentType: entity.ContentTypeParagraph,
		CharStart:   charOffset,
		CharEnd:     charOffset + len(text),
	}
	if len(blocks) > 0 {
		first := blocks[0]
		chunk.ContentType = first.ContentType
		chunk.PageNumber = first.PageNumber
		chunk.SectionHierarchy = first.SectionHierarchy
		chunk.ParagraphIndex = first.Position
	}
	return chunk
}

// overlapTail returns the trailing portion carried into the next chunk,
// preferring whole sentences over a raw character cut.
func (c *Chunker) overlapTail(text string) string {
	if len(text) <= c.cfg.Overlap {
		return text
	}

	region := text[len(text)-min(len(text), c.cfg.Overlap*2):]
	sentences := splitSentences(region)

	if len(sentences) > 1 {
		result := ""
		for i := len(sentences) - 1; i >= 0; i-- {
			if len(result)+len(sentences[i]) <= c.cfg.Overlap {
				result = sentences[i] + result
			} else {
				break
			}
		}
		if result != "" {
			return result
		}
	}

	return text[len(text)-c.cfg.Overlap:]
}

// Matches a sentence end followed by whitespace and a capital, so splits
// skip abbreviation-like runs and decimals.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// splitSentences slices text into sentences, each keeping its trailing
// whitespace so concatenation reproduces the input.
func splitSentences(text string) []string {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var sentences []string
	start := 0
	for _, loc := range locs {
		// Cut just before the capital that opens the next sentence.
		end := loc[1] - 1
		sentences = append(sentences, text[start:end])
		start = end
	}
	sentences = append(sentences, text[start:])
	return sentences
}

// findRelevantBlocks keeps the blocks whose text actually appears in the
// chunk, so split chunks do not inherit provenance from unrelated blocks.
func findRelevantBlocks(chunkText string, blocks []Block) []Block {
	var relevant []Block
	for _, block := range blocks {
		head := block.Text
		if len(head) > 50 {
			head = head[:50]
		}
		tail := block.Text
		if len(tail) > 50 {
			tail = tail[len(tail)-50:]
		}
		if strings.Contains(chunkText, head) || strings.Contains(chunkText, tail) {
			relevant = append(relevant, block)
		}
	}
	if len(relevant) == 0 && len(blocks) > 0 {
		return blocks[:1]
	}
	return relevant
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
