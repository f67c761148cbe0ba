// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModelInfo describes one model installed on the Ollama server.
// Per prd006-models R2.2.
type ModelInfo struct {
	// Name is the model identifier (e.g. "phi3:3.8b").
	Name string `json:"name" yaml:"name"`

	// Size is the on-disk model size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// ModifiedAt is when the model was installed or updated.
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`

	// ParameterSize is the reported parameter count label (e.g. "3.8B").
	ParameterSize string `json:"parameter_size,omitempty" yaml:"parameter_size,omitempty"`

	// Quantization is the quantization level label (e.g. "Q4_0").
	Quantization string `json:"quantization,omitempty" yaml:"quantization,omitempty"`
}

// tagsResponse is the body of GET /api/tags.
type tagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		ModifiedAt time.Time `json:"modified_at"`
		Details    struct {
			ParameterSize     string `json:"parameter_size"`
			QuantizationLevel string `json:"quantization_level"`
		} `json:"details"`
	} `json:"models"`
}

// ListModels returns the models installed on the server.
// Per prd006-models R2.1.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}

	models := make([]ModelInfo, len(tags.Models))
	for i, m := range tags.Models {
		models[i] = ModelInfo{
			Name:          m.Name,
			Size:          m.Size,
			ModifiedAt:    m.ModifiedAt,
			ParameterSize: m.Details.ParameterSize,
			Quantization:  m.Details.QuantizationLevel,
		}
	}
	return models, nil
}

// HasModel reports whether the named model is installed. A bare name
// matches its ":latest" tag. Per prd006-models R2.3.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.Name == name || m.Name == name+":latest" {
			return true, nil
		}
	}
	return false, nil
}

// pullRequest is the request body for POST /api/pull.
type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// pullChunk is one NDJSON line of a streaming pull response.
type pullChunk struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error,omitempty"`
}

// Pull downloads a model onto the server, writing progress lines to w.
// Layer download progress collapses to one line per status change so the
// output stays readable in batch logs. Per prd006-models R3.1-R3.3.
func (c *Client) Pull(ctx context.Context, name string, w io.Writer) error {
	bodyBytes, err := json.Marshal(pullRequest{Name: name, Stream: true})
	if err != nil {
		return fmt.Errorf("marshaling pull request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/pull", bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}

	// Pulls run for minutes; rely on the context, not the client timeout.
	client := &http.Client{Transport: c.httpc.Transport}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}

	var lastStatus string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk pullChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("decoding pull chunk: %w", err)
		}
		if chunk.Error != "" {
			return fmt.Errorf("pull failed: %s", chunk.Error)
		}

		if chunk.Status != lastStatus {
			lastStatus = chunk.Status
			if chunk.Total > 0 {
				fmt.Fprintf(w, "%s (%s)\n", chunk.Status, FormatBytes(chunk.Total))
			} else {
				fmt.Fprintln(w, chunk.Status)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading pull stream: %w", err)
	}

	if !strings.EqualFold(lastStatus, "success") {
		return fmt.Errorf("pull of %s ended with status %q", name, lastStatus)
	}
	return nil
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
