// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders stored articles into publishing formats with
// pluggable backends.
// Implements: prd004-library (R7.1-R7.3);
//
//	docs/ARCHITECTURE § Export.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/article-engine/pkg/types"
)

// Format names a supported output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatDocx Format = "docx"
	FormatRST  Format = "rst"
)

// ParseFormat validates a format name from the CLI or API.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, FormatDocx, FormatRST:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (supported: html, docx, rst)", s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Converter transforms Markdown into a target format. Different
// backends (pandoc container, native writers) implement this interface.
type Converter interface {
	// Convert renders the Markdown source into the target format.
	Convert(markdown []byte, format Format) ([]byte, error)
}

// ArticleFile writes one article through the converter into outDir,
// named after the article ID, and returns the output path. Existing
// files are overwritten; exports are derived data.
func ArticleFile(c Converter, art *types.Article, outDir string, format Format) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	out, err := c.Convert([]byte(art.Content), format)
	if err != nil {
		return "", fmt.Errorf("exporting article %s: %w", art.ID, err)
	}

	path := filepath.Join(outDir, art.ID+"."+format.Ext())
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
