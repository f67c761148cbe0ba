// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"fmt"

	"github.com/pdiddy/article-engine/internal/container"
)

const imagePandoc = "pandoc/core:latest"

// PandocConverter converts Markdown by piping it through the pandoc
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type PandocConverter struct {
	runtime container.Runtime
}

// NewPandocConverter creates a converter that uses the given container
// runtime to run the pandoc image. It verifies that the pandoc image
// exists locally before returning.
func NewPandocConverter(rt container.Runtime) (*PandocConverter, error) {
	if err := rt.ImageExists(imagePandoc); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &PandocConverter{runtime: rt}, nil
}

// Convert pipes Markdown through the pandoc container and returns the
// rendered document. Binary formats (docx) come back on stdout via
// pandoc's "-o -".
func (p *PandocConverter) Convert(markdown []byte, format Format) ([]byte, error) {
	args := []string{"-f", "markdown", "-t", string(format), "-s", "-o", "-"}

	var out bytes.Buffer
	if err := p.runtime.Run(imagePandoc, args, bytes.NewReader(markdown), &out); err != nil {
		return nil, fmt.Errorf("converting to %s with pandoc: %w", format, err)
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("pandoc produced empty %s output", format)
	}

	return out.Bytes(), nil
}
