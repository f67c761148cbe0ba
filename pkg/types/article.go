// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SEOBlock holds the SEO metadata the model emits after the article body.
// Per prd003-seo R1.1-R1.3: title at most 60 characters, meta description
// at most 155 characters, 8-12 keywords.
type SEOBlock struct {
	// Title is the SEO title line.
	Title string `json:"title" yaml:"title"`

	// MetaDescription is the meta description line.
	MetaDescription string `json:"meta_description" yaml:"meta_description"`

	// Keywords lists the SEO keywords in source order.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// IsZero reports whether the block carries no content.
func (s SEOBlock) IsZero() bool {
	return s.Title == "" && s.MetaDescription == "" && len(s.Keywords) == 0
}

// SEO block limits. Per prd003-seo R1.1-R1.3.
const (
	MaxSEOTitleLen = 60
	MaxSEOMetaLen  = 155
	MinSEOKeywords = 8
	MaxSEOKeywords = 12
)

// Article is a generated article with metadata, as stored in the library.
// Per prd004-library R1.2.
type Article struct {
	// ID is a stable identifier derived from topic, model, and content.
	ID string `json:"id" yaml:"id"`

	// Topic is the request topic the article was generated from.
	Topic string `json:"topic" yaml:"topic"`

	// Title is the first H1 of the article body, or the topic when the
	// body has no H1.
	Title string `json:"title" yaml:"title"`

	// Model is the Ollama model that produced the article.
	Model string `json:"model" yaml:"model"`

	// Language is the article language.
	Language string `json:"language" yaml:"language"`

	// Keywords are the request keywords.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Content is the full generated Markdown, including any outline,
	// SEO block, and references the model emitted.
	Content string `json:"content" yaml:"content"`

	// SEO is the parsed SEO block, zero when the model emitted none.
	SEO SEOBlock `json:"seo,omitempty" yaml:"seo,omitempty"`

	// WordCount counts the words in the article body (outline and SEO
	// block excluded).
	WordCount int `json:"word_count" yaml:"word_count"`

	// CreatedAt is the generation timestamp.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Draft is the immediate output of one generation run, before the article
// is saved to the library. Per prd002-generation R3.1.
type Draft struct {
	// Request is the request that produced the draft.
	Request ArticleRequest `json:"request" yaml:"request"`

	// Gen holds the model parameters used.
	Gen GenConfig `json:"gen" yaml:"gen"`

	// Content is the raw Markdown the model produced.
	Content string `json:"content" yaml:"content"`

	// Duration is the wall-clock generation time.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// CreatedAt is the generation timestamp.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
