// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seo parses generated article Markdown into its parts and
// checks the SEO block against the limits the prompt promises.
// Implements: prd003-seo (R1, R2, R3);
//
//	docs/ARCHITECTURE § Output Post-Processing.
package seo

import (
	"fmt"
	"strings"

	"github.com/pdiddy/article-engine/pkg/types"
)

// Output is a generated article split into its parts. Sections the model
// did not emit are zero-valued. Per prd003-seo R2.1.
type Output struct {
	// Outline is the outline section, without its heading.
	Outline string

	// Body is the article body in Markdown, starting at the first H1.
	Body string

	// SEO is the parsed SEO block.
	SEO types.SEOBlock

	// References lists reference titles, list markers stripped.
	References []string
}

// Title returns the first H1 of the body, or empty when there is none.
func (o Output) Title() string {
	for _, line := range strings.Split(o.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}

// WordCount counts whitespace-separated words in the body.
func (o Output) WordCount() int {
	return len(strings.Fields(o.Body))
}

// section markers the parser recognizes, compared case-insensitively
// against heading text.
const (
	outlineHeading    = "outline"
	referencesHeading = "references"
	seoHeading        = "seo block"
)

// Parse splits generated Markdown into outline, body, SEO block, and
// references. The model's section order follows the prompt (outline,
// article, SEO, references) but the parser tolerates missing sections
// and stray blank lines. Per prd003-seo R2.1-R2.4.
func Parse(content string) Output {
	var out Output

	lines := strings.Split(content, "\n")

	type region int
	const (
		inPreamble region = iota
		inOutline
		inBody
		inSEO
		inReferences
	)

	current := inPreamble
	var outline, body []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if heading, ok := headingText(trimmed); ok {
			switch normalizeHeading(heading) {
			case outlineHeading:
				current = inOutline
				continue
			case seoHeading:
				current = inSEO
				continue
			case referencesHeading:
				current = inReferences
				continue
			}
			// Any H1 after the preamble or outline starts the body.
			if strings.HasPrefix(trimmed, "# ") && (current == inPreamble || current == inOutline) {
				current = inBody
			}
		}

		// An "SEO Title:" line starts the block without an explicit SEO
		// heading. Bare "Keywords:" or "Meta Description:" lines do not:
		// body prose legitimately contains them (the block always leads
		// with its title per the prompt's output order).
		if current == inBody || current == inPreamble {
			if label, _, ok := seoLabelValue(trimmed); ok && label == "seo title" {
				current = inSEO
			}
		}

		switch current {
		case inPreamble, inBody:
			body = append(body, line)
			if current == inPreamble && trimmed != "" {
				// Bodies without an H1 still count as body text.
				current = inBody
			}
		case inOutline:
			outline = append(outline, line)
		case inSEO:
			if label, value, ok := seoLabelValue(trimmed); ok {
				applySEOField(&out.SEO, label, value)
			}
		case inReferences:
			if ref := referenceEntry(trimmed); ref != "" {
				out.References = append(out.References, ref)
			}
		}
	}

	out.Outline = strings.TrimSpace(strings.Join(outline, "\n"))
	out.Body = strings.TrimSpace(strings.Join(body, "\n"))
	return out
}

// headingText strips Markdown heading prefixes (#, ##, ###) and bold
// markers, returning the heading text. The second result is false for
// non-heading lines.
func headingText(line string) (string, bool) {
	if strings.HasPrefix(line, "#") {
		return strings.TrimSpace(strings.TrimLeft(line, "#")), true
	}
	// Models sometimes emit section headings as bold lines.
	if strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4 {
		return strings.TrimSpace(strings.Trim(line, "*")), true
	}
	return "", false
}

// normalizeHeading lowercases heading text and drops trailing colons so
// "Outline:", "OUTLINE", and "## Outline" all match.
func normalizeHeading(s string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}

// seoLabelValue matches SEO block lines of the form "Label: value",
// tolerating list markers and bold labels. Recognized labels: SEO Title,
// Meta Description, SEO Keywords / Keywords.
func seoLabelValue(line string) (label, value string, ok bool) {
	s := strings.TrimSpace(strings.TrimLeft(line, "-*• "))
	s = strings.ReplaceAll(s, "**", "")

	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}

	label = strings.ToLower(strings.TrimSpace(s[:idx]))
	value = strings.TrimSpace(s[idx+1:])

	switch label {
	case "seo title", "meta description", "seo keywords", "keywords":
		return label, value, true
	}
	return "", "", false
}

// applySEOField stores one parsed label/value pair on the block.
func applySEOField(block *types.SEOBlock, label, value string) {
	switch label {
	case "seo title":
		block.Title = value
	case "meta description":
		block.MetaDescription = value
	case "seo keywords", "keywords":
		for _, kw := range strings.Split(value, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				block.Keywords = append(block.Keywords, kw)
			}
		}
	}
}

// referenceEntry strips list markers and numbering from a references
// line, returning the bare title. Empty lines and headings yield "".
func referenceEntry(line string) string {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return ""
	}
	s = strings.TrimLeft(s, "-*• ")
	// Numbered list markers: "1." or "1)".
	if len(s) > 2 && s[0] >= '0' && s[0] <= '9' && (s[1] == '.' || s[1] == ')') {
		s = strings.TrimSpace(s[2:])
	}
	return strings.TrimSpace(strings.Trim(s, "*"))
}

// Lint checks a parsed SEO block against the prompt's limits and returns
// human-readable violations. An all-zero block returns a single "missing"
// violation; Lint is only called when the request asked for SEO output.
// Per prd003-seo R3.1-R3.4.
func Lint(block types.SEOBlock) []string {
	if block.IsZero() {
		return []string{"SEO block missing from output"}
	}

	var violations []string
	if block.Title == "" {
		violations = append(violations, "SEO title missing")
	} else if n := len([]rune(block.Title)); n > types.MaxSEOTitleLen {
		violations = append(violations, fmt.Sprintf("SEO title is %d chars, limit %d", n, types.MaxSEOTitleLen))
	}

	if block.MetaDescription == "" {
		violations = append(violations, "meta description missing")
	} else if n := len([]rune(block.MetaDescription)); n > types.MaxSEOMetaLen {
		violations = append(violations, fmt.Sprintf("meta description is %d chars, limit %d", n, types.MaxSEOMetaLen))
	}

	switch n := len(block.Keywords); {
	case n == 0:
		violations = append(violations, "SEO keywords missing")
	case n < types.MinSEOKeywords:
		violations = append(violations, fmt.Sprintf("%d SEO keywords, expected at least %d", n, types.MinSEOKeywords))
	case n > types.MaxSEOKeywords:
		violations = append(violations, fmt.Sprintf("%d SEO keywords, expected at most %d", n, types.MaxSEOKeywords))
	}

	return violations
}
