// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders article generation prompts from an ArticleRequest.
// Implements: prd001-prompting (R1, R2, R3);
//
//	docs/ARCHITECTURE § Prompting.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/article-engine/pkg/types"
)

// SystemPrompt is sent as the system message on every generation.
// Per prd001-prompting R1.1.
const SystemPrompt = "Write clear, accurate, reader-friendly content. Prefer Markdown."

// articlePromptTmpl is the user prompt sent to the model for one article.
// The structure, output order, and constraint wording are load-bearing:
// the seo package parses the generated output against the labels and
// limits promised here. Per prd001-prompting R3.1-R3.6.
var articlePromptTmpl = template.Must(template.New("article").Parse(`You are a senior content strategist and expert writer.

Goal
-----
Write a comprehensive, well-structured article in {{.Language}} for the topic:
"{{.Topic}}"

Audience: {{.Audience}}
Tone/Voice: {{.Tone}}
Reading Level: {{.ReadingLevel}}
Target Length: ~{{.TargetWords}} words
Primary Keywords: {{.KeywordList}}

Structure & Style
-----------------
{{.OutlineBlock}}- Use Markdown formatting.
- Use scannable headings, short paragraphs, and bullet lists where helpful.
- Provide concrete examples and actionable tips.
- Avoid fluff; keep it factual and clear.
- Natural keyword usage; avoid keyword stuffing.

Content Requirements
--------------------
- Strong hook and crisp thesis in intro.
- Each H2 should fully cover one major point.
- Add comparisons, pros/cons, pitfalls, or checklists where useful.
- Conclude with practical summary or next steps.

{{.SEOBlock}}{{.RefsBlock}}Output Order
------------
{{.OutputOrder}}
Extra Instructions
------------------
{{.ExtraInstructions}}`))

// promptData carries the pre-assembled blocks into the template.
type promptData struct {
	types.ArticleRequest
	KeywordList  string
	OutlineBlock string
	SEOBlock     string
	RefsBlock    string
	OutputOrder  string
}

const outlineBlock = `Include a clear outline before the main content.
- H1 title
- 5–8 H2 sections with concise H3s where helpful
`

const skipOutlineBlock = `Skip the outline; start directly with the article.
`

const seoBlock = `SEO Output
----------
After the article, output an SEO block with:
- SEO Title (≤ 60 chars)
- Meta Description (≤ 155 chars)
- 8–12 SEO Keywords (comma-separated)

`

const refsBlock = `References
----------
Add a short 'References' section with 3–5 plausible sources (titles only, no links).

`

// Render produces the full user prompt for one article request.
// The request is assumed validated. Per prd001-prompting R3.1.
func Render(req types.ArticleRequest) (string, error) {
	data := promptData{
		ArticleRequest: req,
		KeywordList:    keywordList(req.Keywords),
		OutlineBlock:   skipOutlineBlock,
		OutputOrder:    outputOrder(req),
	}
	if req.IncludeOutline {
		data.OutlineBlock = outlineBlock
	}
	if req.IncludeSEO {
		data.SEOBlock = seoBlock
	}
	if req.IncludeReferences {
		data.RefsBlock = refsBlock
	}

	var buf bytes.Buffer
	if err := articlePromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// keywordList joins keywords for the prompt header, or "N/A" when none
// were given. Per prd001-prompting R2.4.
func keywordList(keywords []string) string {
	if len(keywords) == 0 {
		return "N/A"
	}
	return strings.Join(keywords, ", ")
}

// outputOrder numbers the output sections the model must emit, in order:
// outline (if requested), article, SEO block (if requested), references
// (if requested). Per prd001-prompting R3.5.
func outputOrder(req types.ArticleRequest) string {
	var b strings.Builder
	n := 1
	if req.IncludeOutline {
		fmt.Fprintf(&b, "%d) Outline\n", n)
		n++
	}
	fmt.Fprintf(&b, "%d) Full article in Markdown\n", n)
	n++
	if req.IncludeSEO {
		fmt.Fprintf(&b, "%d) SEO Block\n", n)
		n++
	}
	if req.IncludeReferences {
		fmt.Fprintf(&b, "%d) References\n", n)
	}
	return b.String()
}
