package wiki

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/pkg/retrieval"

	"github.com/google/uuid"
)

const overviewHeading = "Overview"

// Searcher is the retrieval surface the synthesizer consumes.
type Searcher interface {
	Search(ctx context.Context, query retrieval.Query) (*retrieval.Response, error)
}

type Options struct {
	MaxSources int
	MinScore   float64
}

// DocumentExcerpt is one matched passage inside a source comparison.
type DocumentExcerpt struct {
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	PageNumber *int    `json:"page_number"`
	Section    string  `json:"section"`
}

// DocumentComparison groups a topic's matches under one source document.
type DocumentComparison struct {
	DocumentId    uuid.UUID         `json:"document_id"`
	DocumentTitle string            `json:"document_title"`
	SourcePath    string            `json:"source_path"`
	Excerpts      []DocumentExcerpt `json:"excerpts"`
}

// Synthesizer turns scored search results into hierarchical wiki entries.
//
// Synthesis is fully deterministic: content is assembled from chunk text
// only, clustering follows the chunks' section hierarchy, and every piece
// of output is traceable to a cited chunk.
type Synthesizer struct {
	searcher Searcher
	opts     Options
}

func NewSynthesizer(searcher Searcher, opts Options) *Synthesizer {
	if opts.MaxSources <= 0 {
		opts.MaxSources = 10
	}
	if opts.MinScore <= 0 {
		opts.MinScore = 0.3
	}
	return &Synthesizer{searcher: searcher, opts: opts}
}

// Generate builds a wiki entry for a query. Zero retrieved results produce
// an entry that says so, not an error.
func (s *Synthesizer) Generate(ctx context.Context, query string, maxSources int) (*entity.WikiEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidArgument("wiki query must not be empty")
	}
	if maxSources <= 0 {
		maxSources = s.opts.MaxSources
	}

	response, err := s.searcher.Search(ctx, retrieval.Query{
		Query:    query,
		Limit:    maxSources,
		MinScore: s.opts.MinScore,
	})
	if err != nil {
		return nil, err
	}

	entry := &entity.WikiEntry{
		EntryId:     uuid.New(),
		Title:       deriveTitle(query),
		Query:       query,
		GeneratedAt: time.Now().UTC(),
		Sections:    []entity.WikiSection{},
		AllSources:  []entity.WikiSource{},
	}

	results := dedupeByChunkId(response.Results)
	if len(results) == 0 {
		entry.Summary = "No relevant information found in the knowledge base."
		return entry, nil
	}

	entry.Summary = deriveSummary(results)
	entry.Sections = s.buildSections(results)
	entry.AllSources = collectSources(entry.Sections)

	return entry, nil
}

// GenerateSection builds a single standalone section for a topic. The
// optional context string sharpens retrieval but never appears in output.
func (s *Synthesizer) GenerateSection(ctx context.Context, topic, contextHint string, maxSources int) (*entity.WikiSection, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, apperrors.InvalidArgument("section topic must not be empty")
	}
	if maxSources <= 0 {
		maxSources = 5
	}

	searchText := topic
	if contextHint != "" {
		searchText = contextHint + " " + topic
	}

	response, err := s.searcher.Search(ctx, retrieval.Query{
		Query:    searchText,
		Limit:    maxSources,
		MinScore: s.opts.MinScore,
	})
	if err != nil {
		return nil, err
	}

	results := dedupeByChunkId(response.Results)
	if len(results) == 0 {
		return &entity.WikiSection{
			Heading:     topic,
			Content:     "No information available.",
			Confidence:  0,
			Sources:     []entity.WikiSource{},
			Subsections: []entity.WikiSection{},
		}, nil
	}

	return &entity.WikiSection{
		Heading:     topic,
		Content:     mergeContent(results),
		Confidence:  confidence(results),
		Sources:     toSources(results),
		Subsections: []entity.WikiSection{},
	}, nil
}

// Compare groups a topic's matches per source document so agreement and
// disagreement across documents can be inspected side by side.
func (s *Synthesizer) Compare(ctx context.Context, query string, maxPerSource int) ([]DocumentComparison, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidArgument("compare query must not be empty")
	}
	if maxPerSource <= 0 {
		maxPerSource = 3
	}

	response, err := s.searcher.Search(ctx, retrieval.Query{
		Query:    query,
		Limit:    50,
		MinScore: s.opts.MinScore,
	})
	if err != nil {
		return nil, err
	}

	var order []uuid.UUID
	byDocument := map[uuid.UUID]*DocumentComparison{}

	for _, result := range response.Results {
		docId := result.Metadata.DocumentId
		cmp, ok := byDocument[docId]
		if !ok {
			title := result.Metadata.DocumentTitle
			if title == "" {
				title = result.Metadata.SourcePath
			}
			cmp = &DocumentComparison{
				DocumentId:    docId,
				DocumentTitle: title,
				SourcePath:    result.Metadata.SourcePath,
				Excerpts:      []DocumentExcerpt{},
			}
			byDocument[docId] = cmp
			order = append(order, docId)
		}

		if len(cmp.Excerpts) < maxPerSource {
			cmp.Excerpts = append(cmp.Excerpts, DocumentExcerpt{
				Text:       result.Text,
				Score:      result.Score,
				PageNumber: result.Metadata.PageNumber,
				Section:    result.Metadata.SectionLabel(),
			})
		}
	}

	comparisons := make([]DocumentComparison, 0, len(order))
	for _, docId := range order {
		comparisons = append(comparisons, *byDocument[docId])
	}
	return comparisons, nil
}

type cluster struct {
	heading string
	direct  []entity.SearchResult
	subs    []*cluster
}

// buildSections clusters results by their top-level heading, sub-clusters by
// the second level, and collapses sub-clusters with fewer than two members
// back into the parent. The tree never exceeds three levels.
func (s *Synthesizer) buildSections(results []entity.SearchResult) []entity.WikiSection {
	var order []string
	top := map[string]*cluster{}

	for _, result := range results {
		heading := overviewHeading
		if len(result.Metadata.SectionHierarchy) > 0 {
			heading = result.Metadata.SectionHierarchy[0]
		}
		c, ok := top[heading]
		if !ok {
			c = &cluster{heading: heading}
			top[heading] = c
			order = append(order, heading)
		}
		c.direct = append(c.direct, result)
	}

	sections := make([]entity.WikiSection, 0, len(order))
	for _, heading := range order {
		sections = append(sections, buildSection(top[heading]))
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Confidence > sections[j].Confidence
	})
	return sections
}

func buildSection(c *cluster) entity.WikiSection {
	all := c.direct

	var subOrder []string
	subClusters := map[string][]entity.SearchResult{}
	var direct []entity.SearchResult

	for _, result := range c.direct {
		if len(result.Metadata.SectionHierarchy) < 2 {
			direct = append(direct, result)
			continue
		}
		sub := result.Metadata.SectionHierarchy[1]
		if _, ok := subClusters[sub]; !ok {
			subOrder = append(subOrder, sub)
		}
		subClusters[sub] = append(subClusters[sub], result)
	}

	var subsections []entity.WikiSection
	for _, sub := range subOrder {
		members := subClusters[sub]
		if len(members) < 2 {
			// Too thin to stand alone, fold into the parent.
			direct = append(direct, members...)
			continue
		}
		subsections = append(subsections, entity.WikiSection{
			Heading:     sub,
			Content:     mergeContent(members),
			Confidence:  confidence(members),
			Sources:     toSources(members),
			Subsections: []entity.WikiSection{},
		})
	}

	sort.SliceStable(subsections, func(i, j int) bool {
		return subsections[i].Confidence > subsections[j].Confidence
	})
	if subsections == nil {
		subsections = []entity.WikiSection{}
	}

	return entity.WikiSection{
		Heading:     c.heading,
		Content:     mergeContent(direct),
		Confidence:  confidence(all),
		Sources:     toSources(direct),
		Subsections: subsections,
	}
}

// mergeContent concatenates contributing chunk texts deterministically in
// (document_id, chunk_index) order, dropping near-duplicate passages.
func mergeContent(results []entity.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	ordered := make([]entity.SearchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Metadata, ordered[j].Metadata
		if a.DocumentId != b.DocumentId {
			return a.DocumentId.String() < b.DocumentId.String()
		}
		return a.ChunkIndex < b.ChunkIndex
	})

	seen := map[string]bool{}
	var paragraphs []string
	for _, result := range ordered {
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		normalized := truncate(strings.ToLower(text), 100)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		paragraphs = append(paragraphs, text)
	}

	return strings.Join(paragraphs, "\n\n")
}

// confidence aggregates contributor scores into [0,1]. Scores are weighted
// harmonically in descending order so the top contributor dominates, then
// damped by a support factor so a lone weak match scores below several
// strong, agreeing ones.
func confidence(results []entity.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	var weighted, weights float64
	for i, score := range scores {
		w := 1.0 / float64(i+1)
		weighted += w * score
		weights += w
	}
	mean := weighted / weights

	n := float64(len(scores))
	support := 1.0 - 1.0/(2.0*(n+1.0))

	c := mean * support
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// collectSources walks the section tree depth-first, top-down, and returns
// every citation once, in first-appearance order.
func collectSources(sections []entity.WikiSection) []entity.WikiSource {
	seen := map[uuid.UUID]bool{}
	sources := []entity.WikiSource{}

	var walk func(section entity.WikiSection)
	walk = func(section entity.WikiSection) {
		for _, src := range section.Sources {
			if seen[src.ChunkId] {
				continue
			}
			seen[src.ChunkId] = true
			sources = append(sources, src)
		}
		for _, sub := range section.Subsections {
			walk(sub)
		}
	}

	for _, section := range sections {
		walk(section)
	}
	return sources
}

func toSources(results []entity.SearchResult) []entity.WikiSource {
	sources := make([]entity.WikiSource, 0, len(results))
	for _, result := range results {
		sources = append(sources, entity.WikiSource{
			ChunkId:        result.ChunkId,
			DocumentId:     result.Metadata.DocumentId,
			DocumentTitle:  result.Metadata.DocumentTitle,
			SourcePath:     result.Metadata.SourcePath,
			PageNumber:     result.Metadata.PageNumber,
			Section:        result.Metadata.SectionLabel(),
			RelevanceScore: result.Score,
			Excerpt:        excerpt(result.Text, 200),
		})
	}
	return sources
}

// dedupeByChunkId keeps the first (highest scored) occurrence of each chunk.
func dedupeByChunkId(results []entity.SearchResult) []entity.SearchResult {
	seen := map[uuid.UUID]bool{}
	out := make([]entity.SearchResult, 0, len(results))
	for _, r := range results {
		if seen[r.ChunkId] {
			continue
		}
		seen[r.ChunkId] = true
		out = append(out, r)
	}
	return out
}

// deriveSummary stitches short excerpts from the top three results.
func deriveSummary(results []entity.SearchResult) string {
	top := make([]entity.SearchResult, len(results))
	copy(top, results)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if len(top) > 3 {
		top = top[:3]
	}

	var excerpts []string
	for _, result := range top {
		text := strings.TrimSpace(result.Text)
		head := truncate(text, 200)
		if idx := strings.Index(head, ". "); idx >= 0 {
			excerpts = append(excerpts, text[:idx+1])
		} else {
			excerpts = append(excerpts, excerpt(text, 200))
		}
	}
	return strings.Join(excerpts, " ")
}

// deriveTitle turns a query into a wiki-style title: question scaffolding
// stripped, remaining words title-cased.
func deriveTitle(query string) string {
	title := strings.TrimSpace(query)
	title = strings.TrimRight(title, "?")

	lower := strings.ToLower(title)
	for _, prefix := range []string{"what is ", "how to ", "why ", "when ", "where ", "who "} {
		if strings.HasPrefix(lower, prefix) {
			title = title[len(prefix):]
			break
		}
	}

	return titleCase(title)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		for j, r := range runes {
			if j == 0 {
				runes[j] = unicode.ToUpper(r)
			} else {
				runes[j] = unicode.ToLower(r)
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	return truncate(text, max) + "..."
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
