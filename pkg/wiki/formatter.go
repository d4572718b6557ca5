package wiki

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
)

// Render formats. "structured" is indented JSON of the whole entry.
const (
	FormatMarkdown   = "markdown"
	FormatHTML       = "html"
	FormatText       = "text"
	FormatStructured = "structured"
)

// Render serializes a wiki entry into the requested format. It is a pure
// function of the entry: rendering never mutates it, and include_sources
// only controls what is printed, never what the entry retains.
func Render(entry *entity.WikiEntry, format string, includeSources bool) (string, error) {
	switch strings.ToLower(format) {
	case FormatMarkdown:
		return renderMarkdown(entry, includeSources), nil
	case FormatHTML:
		return renderHTML(entry, includeSources), nil
	case FormatText:
		return renderText(entry, includeSources), nil
	case FormatStructured:
		return renderStructured(entry)
	default:
		return "", apperrors.InvalidArgument("unknown render format: %s", format)
	}
}

func renderMarkdown(entry *entity.WikiEntry, includeSources bool) string {
	lines := []string{"# " + entry.Title, ""}

	if entry.Summary != "" {
		lines = append(lines, entry.Summary, "")
	}

	if len(entry.Sections) > 2 {
		lines = append(lines, "## Contents", "")
		for i, section := range entry.Sections {
			anchor := strings.ReplaceAll(strings.ToLower(section.Heading), " ", "-")
			lines = append(lines, fmt.Sprintf("%d. [%s](#%s)", i+1, section.Heading, anchor))
		}
		lines = append(lines, "")
	}

	for _, section := range entry.Sections {
		lines = append(lines, markdownSection(section, 2, includeSources)...)
	}

	if includeSources && len(entry.AllSources) > 0 {
		lines = append(lines, "", "## References", "")
		for i, source := range entry.AllSources {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, citation(source)))
		}
	}

	lines = append(lines, "", "---", fmt.Sprintf("*Generated from %d sources*", len(entry.AllSources)))

	return strings.Join(lines, "\n")
}

func markdownSection(section entity.WikiSection, level int, includeSources bool) []string {
	lines := []string{
		strings.Repeat("#", level) + " " + section.Heading,
		"",
		section.Content,
		"",
	}

	if includeSources && len(section.Sources) > 0 {
		var refs []string
		for _, s := range section.Sources[:min(3, len(section.Sources))] {
			name := s.DocumentTitle
			if name == "" {
				name = s.SourcePath
			}
			refs = append(refs, "["+name+"]")
		}
		lines = append(lines, "*Sources: "+strings.Join(refs, ", ")+"*", "")
	}

	for _, sub := range section.Subsections {
		lines = append(lines, markdownSection(sub, level+1, includeSources)...)
	}

	return lines
}

func renderHTML(entry *entity.WikiEntry, includeSources bool) string {
	parts := []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<head>",
		"<title>" + html.EscapeString(entry.Title) + "</title>",
		`<meta charset="UTF-8">`,
		"<style>",
		"body { font-family: system-ui, sans-serif; max-width: 800px; margin: 0 auto; padding: 2rem; }",
		"h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }",
		".summary { font-size: 1.1rem; color: #555; }",
		".section { margin: 2rem 0; }",
		".source { font-size: 0.9rem; color: #666; }",
		".references { margin-top: 3rem; padding-top: 1rem; border-top: 1px solid #ddd; }",
		".confidence { font-size: 0.8rem; color: #999; }",
		"</style>",
		"</head>",
		"<body>",
		"<article>",
		"<h1>" + html.EscapeString(entry.Title) + "</h1>",
	}

	if entry.Summary != "" {
		parts = append(parts, `<p class="summary">`+html.EscapeString(entry.Summary)+"</p>")
	}

	for _, section := range entry.Sections {
		parts = append(parts, htmlSection(section, 2, includeSources)...)
	}

	if includeSources && len(entry.AllSources) > 0 {
		parts = append(parts, `<section class="references">`, "<h2>References</h2>", "<ol>")
		for _, source := range entry.AllSources {
			parts = append(parts, "<li>"+html.EscapeString(citation(source))+"</li>")
		}
		parts = append(parts, "</ol>", "</section>")
	}

	parts = append(parts, "</article>", "</body>", "</html>")

	return strings.Join(parts, "\n")
}

func htmlSection(section entity.WikiSection, level int, includeSources bool) []string {
	tag := fmt.Sprintf("h%d", min(level, 6))

	parts := []string{
		`<section class="section">`,
		"<" + tag + ">" + html.EscapeString(section.Heading) + "</" + tag + ">",
	}

	for _, para := range strings.Split(section.Content, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		parts = append(parts, "<p>"+html.EscapeString(para)+"</p>")
	}

	if includeSources && len(section.Sources) > 0 {
		var refs []string
		for _, s := range section.Sources[:min(3, len(section.Sources))] {
			name := s.DocumentTitle
			if name == "" {
				name = s.SourcePath
			}
			refs = append(refs, name)
		}
		parts = append(parts, `<p class="source">Sources: `+html.EscapeString(strings.Join(refs, ", "))+"</p>")
	}

	if section.Confidence > 0 {
		parts = append(parts, fmt.Sprintf(`<p class="confidence">Confidence: %d%%</p>`, int(section.Confidence*100)))
	}

	for _, sub := range section.Subsections {
		parts = append(parts, htmlSection(sub, level+1, includeSources)...)
	}

	parts = append(parts, "</section>")
	return parts
}

func renderText(entry *entity.WikiEntry, includeSources bool) string {
	lines := []string{
		strings.ToUpper(entry.Title),
		strings.Repeat("=", len(entry.Title)),
		"",
	}

	if entry.Summary != "" {
		lines = append(lines, entry.Summary, "")
	}

	for _, section := range entry.Sections {
		lines = append(lines, textSection(section, 0)...)
	}

	if includeSources && len(entry.AllSources) > 0 {
		lines = append(lines, "", "REFERENCES", strings.Repeat("-", 10), "")
		for i, source := range entry.AllSources {
			lines = append(lines, fmt.Sprintf("[%d] %s", i+1, citation(source)))
		}
	}

	return strings.Join(lines, "\n")
}

func textSection(section entity.WikiSection, level int) []string {
	indent := strings.Repeat("  ", level)

	lines := []string{
		indent + section.Heading,
		indent + strings.Repeat("-", len(section.Heading)),
		"",
	}

	for _, line := range strings.Split(section.Content, "\n") {
		lines = append(lines, indent+line)
	}
	lines = append(lines, "")

	for _, sub := range section.Subsections {
		lines = append(lines, textSection(sub, level+1)...)
	}

	return lines
}

func renderStructured(entry *entity.WikiEntry) (string, error) {
	out, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", apperrors.Internal("encode wiki entry", err)
	}
	return string(out), nil
}

func citation(source entity.WikiSource) string {
	var parts []string

	if source.DocumentTitle != "" {
		parts = append(parts, `"`+source.DocumentTitle+`"`)
	} else {
		parts = append(parts, source.SourcePath)
	}

	if source.PageNumber != nil {
		parts = append(parts, fmt.Sprintf("p. %d", *source.PageNumber))
	}

	if source.Section != "" {
		parts = append(parts, "Section: "+source.Section)
	}

	return strings.Join(parts, ", ")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
