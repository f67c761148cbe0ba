// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/article-engine/pkg/types"
)

// TopicFile is the on-disk representation of a batch generation run:
// shared defaults plus one entry per article. The writer can keep a
// topics file under version control and re-run it as topics are added.
// Implements: prd002-generation R6.1.
type TopicFile struct {
	// Defaults apply to every topic unless the entry overrides them.
	Defaults TopicEntry `yaml:"defaults"`

	// Gen overrides the configured model parameters for this batch.
	Gen *types.GenConfig `yaml:"gen,omitempty"`

	// Topics lists the articles to generate.
	Topics []TopicEntry `yaml:"topics"`
}

// TopicEntry holds per-article request fields. Unset fields fall back to
// the file defaults, then to the built-in request defaults. The include
// flags are pointers so an explicit false survives the merge.
type TopicEntry struct {
	Topic             string             `yaml:"topic"`
	Keywords          []string           `yaml:"keywords,omitempty"`
	Audience          string             `yaml:"audience,omitempty"`
	Tone              string             `yaml:"tone,omitempty"`
	Language          string             `yaml:"language,omitempty"`
	TargetWords       int                `yaml:"target_words,omitempty"`
	IncludeOutline    *bool              `yaml:"include_outline,omitempty"`
	IncludeSEO        *bool              `yaml:"include_seo,omitempty"`
	IncludeReferences *bool              `yaml:"include_references,omitempty"`
	ReadingLevel      types.ReadingLevel `yaml:"reading_level,omitempty"`
	ExtraInstructions string             `yaml:"extra_instructions,omitempty"`
}

// ReadTopicFile loads a topics file from disk and rejects empty ones.
func ReadTopicFile(path string) (*TopicFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	var tf TopicFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing topics file: %w", err)
	}
	if len(tf.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s lists no topics", path)
	}
	return &tf, nil
}

// Requests resolves every topic entry into a full ArticleRequest:
// built-in defaults, overridden by the file defaults, overridden by the
// entry. Entries without a topic produce an error naming the position.
func (tf *TopicFile) Requests() ([]types.ArticleRequest, error) {
	reqs := make([]types.ArticleRequest, 0, len(tf.Topics))
	for i, entry := range tf.Topics {
		if entry.Topic == "" {
			return nil, fmt.Errorf("topics[%d]: topic is required", i)
		}
		req := types.NewArticleRequest(entry.Topic)
		tf.Defaults.apply(&req)
		entry.apply(&req)
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("topics[%d] (%s): %w", i, entry.Topic, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// apply overlays the entry's set fields onto the request.
func (e TopicEntry) apply(req *types.ArticleRequest) {
	if e.Topic != "" {
		req.Topic = e.Topic
	}
	if len(e.Keywords) > 0 {
		req.Keywords = e.Keywords
	}
	if e.Audience != "" {
		req.Audience = e.Audience
	}
	if e.Tone != "" {
		req.Tone = e.Tone
	}
	if e.Language != "" {
		req.Language = e.Language
	}
	if e.TargetWords != 0 {
		req.TargetWords = e.TargetWords
	}
	if e.IncludeOutline != nil {
		req.IncludeOutline = *e.IncludeOutline
	}
	if e.IncludeSEO != nil {
		req.IncludeSEO = *e.IncludeSEO
	}
	if e.IncludeReferences != nil {
		req.IncludeReferences = *e.IncludeReferences
	}
	if e.ReadingLevel != "" {
		req.ReadingLevel = e.ReadingLevel
	}
	if e.ExtraInstructions != "" {
		req.ExtraInstructions = e.ExtraInstructions
	}
}
