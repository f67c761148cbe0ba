// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ReadingLevel selects the target readability for a generated article.
// Per prd001-prompting R2.3.
type ReadingLevel string

const (
	ReadingEasy         ReadingLevel = "Easy to read (Grade 8–10)"
	ReadingIntermediate ReadingLevel = "Intermediate (Grade 11–12)"
	ReadingAdvanced     ReadingLevel = "Advanced/Technical"
)

// validReadingLevels is the set of accepted ReadingLevel values.
var validReadingLevels = map[ReadingLevel]bool{
	ReadingEasy:         true,
	ReadingIntermediate: true,
	ReadingAdvanced:     true,
}

// Word count bounds for a single article. Per prd001-prompting R2.5.
const (
	MinTargetWords     = 300
	MaxTargetWords     = 3000
	DefaultTargetWords = 1000
)

// ArticleRequest describes one article to generate.
// Per prd001-prompting R2.1-R2.8.
type ArticleRequest struct {
	// Topic is the subject of the article. Required.
	Topic string `json:"topic" yaml:"topic"`

	// Keywords are primary SEO keywords to weave into the article.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Audience describes the intended readership.
	Audience string `json:"audience" yaml:"audience"`

	// Tone is the writing voice (e.g. "Informative and engaging").
	Tone string `json:"tone" yaml:"tone"`

	// Language is the output language.
	Language string `json:"language" yaml:"language"`

	// TargetWords is the approximate article length in words (300-3000).
	TargetWords int `json:"target_words" yaml:"target_words"`

	// IncludeOutline asks for an H1/H2/H3 outline before the article body.
	IncludeOutline bool `json:"include_outline" yaml:"include_outline"`

	// IncludeSEO asks for an SEO block (title, meta description, keywords)
	// after the article.
	IncludeSEO bool `json:"include_seo" yaml:"include_seo"`

	// IncludeReferences asks for a short References section (titles only).
	IncludeReferences bool `json:"include_references" yaml:"include_references"`

	// ReadingLevel is the target readability.
	ReadingLevel ReadingLevel `json:"reading_level" yaml:"reading_level"`

	// ExtraInstructions carries free-form additions to the prompt.
	ExtraInstructions string `json:"extra_instructions,omitempty" yaml:"extra_instructions,omitempty"`
}

// NewArticleRequest returns a request for the given topic with the
// documented defaults applied. Per prd001-prompting R2.2.
func NewArticleRequest(topic string) ArticleRequest {
	return ArticleRequest{
		Topic:          topic,
		Audience:       "General readers",
		Tone:           "Informative and engaging",
		Language:       "English",
		TargetWords:    DefaultTargetWords,
		IncludeOutline: true,
		IncludeSEO:     true,
		ReadingLevel:   ReadingEasy,
	}
}

// ApplyDefaults fills zero-valued fields with the documented defaults.
// It does not touch boolean flags: false is a meaningful choice for them.
func (r *ArticleRequest) ApplyDefaults() {
	if r.Audience == "" {
		r.Audience = "General readers"
	}
	if r.Tone == "" {
		r.Tone = "Informative and engaging"
	}
	if r.Language == "" {
		r.Language = "English"
	}
	if r.TargetWords == 0 {
		r.TargetWords = DefaultTargetWords
	}
	if r.ReadingLevel == "" {
		r.ReadingLevel = ReadingEasy
	}
}

// Validate checks the request against prd001-prompting R2.1-R2.8.
func (r ArticleRequest) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if r.TargetWords < MinTargetWords || r.TargetWords > MaxTargetWords {
		return fmt.Errorf("target_words %d out of range [%d, %d]",
			r.TargetWords, MinTargetWords, MaxTargetWords)
	}
	if !validReadingLevels[r.ReadingLevel] {
		return fmt.Errorf("unknown reading level %q", r.ReadingLevel)
	}
	return nil
}

// Temperature bounds for generation. Per prd002-generation R1.3.
const (
	MinTemperature     = 0.0
	MaxTemperature     = 1.5
	DefaultTemperature = 0.7
)

// DefaultModel is the Ollama model used when none is configured.
// Lightweight, good on CPU.
const DefaultModel = "phi3:3.8b"

// GenConfig holds per-generation model parameters.
// Per prd002-generation R1.1-R1.4.
type GenConfig struct {
	// Model is the Ollama model identifier (e.g. "phi3:3.8b").
	Model string `json:"model" yaml:"model"`

	// Temperature controls sampling creativity (0-1.5). Nil falls back
	// to DefaultTemperature; zero is a valid explicit value (greedy
	// decoding) and is preserved.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Seed fixes the sampling seed for reproducible output. Nil leaves
	// the seed unset so the server picks one.
	Seed *int `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// NewGenConfig returns a GenConfig with the documented defaults.
func NewGenConfig() GenConfig {
	t := DefaultTemperature
	return GenConfig{
		Model:       DefaultModel,
		Temperature: &t,
	}
}

// Validate checks the generation parameters.
func (g GenConfig) Validate() error {
	if g.Model == "" {
		return fmt.Errorf("model is required")
	}
	if g.Temperature != nil && (*g.Temperature < MinTemperature || *g.Temperature > MaxTemperature) {
		return fmt.Errorf("temperature %.2f out of range [%.1f, %.1f]",
			*g.Temperature, MinTemperature, MaxTemperature)
	}
	return nil
}
