// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ollama is a client for the Ollama HTTP API: streaming chat
// generation, model listing, and model pulls.
// Implements: prd002-generation R5, prd006-models (R1-R3);
//
//	docs/ARCHITECTURE § Model Backend.
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

	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/pkg/types"
)

// Client talks to one Ollama server.
type Client struct {
	host       string
	authToken  string
	userAgent  string
	maxRetries int
	httpc      *http.Client
}

// NewClient builds a Client from OllamaConfig. Zero-valued fields fall
// back to the documented defaults.
func NewClient(cfg types.OllamaConfig) *Client {
	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = types.DefaultOllamaHost
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Client{
		host:       host,
		authToken:  cfg.AuthToken,
		userAgent:  cfg.UserAgent,
		maxRetries: maxRetries,
		httpc:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for POST /api/chat.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// chatChunk is one NDJSON line of a streaming chat response.
type chatChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// apiError is the error body Ollama returns on non-200 responses.
type apiError struct {
	Error string `json:"error"`
}

// Chat streams a chat completion and returns the accumulated assistant
// content. onDelta, when non-nil, receives each content fragment as it
// arrives so callers can show live progress. Temperature and seed are
// sent only when set so the server keeps its own defaults otherwise.
// Per prd002-generation R5.1-R5.3.
func (c *Client) Chat(ctx context.Context, system, user string, gen types.GenConfig, onDelta func(string)) (string, error) {
	options := map[string]any{}
	if gen.Temperature != nil {
		options["temperature"] = *gen.Temperature
	}
	if gen.Seed != nil {
		options["seed"] = *gen.Seed
	}

	reqBody := chatRequest{
		Model: gen.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  true,
		Options: options,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}

	// Streaming generations run longer than any sane request timeout;
	// rely on the context for cancellation instead.
	client := &http.Client{Transport: c.httpc.Transport}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Ollama chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.responseError(resp)
	}

	var b strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return b.String(), ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return b.String(), fmt.Errorf("decoding stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return b.String(), fmt.Errorf("Ollama stream error: %s", chunk.Error)
		}
		if chunk.Message.Content != "" {
			b.WriteString(chunk.Message.Content)
			if onDelta != nil {
				onDelta(chunk.Message.Content)
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return b.String(), fmt.Errorf("reading stream: %w", err)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("Ollama returned empty content for model %s", gen.Model)
	}
	return b.String(), nil
}

// Version checks server reachability and returns the Ollama version.
// Per prd006-models R1.1.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/version", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("reaching Ollama at %s: %w", c.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.responseError(resp)
	}

	var v struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", fmt.Errorf("decoding version response: %w", err)
	}
	return v.Version, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.host+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	return req, nil
}

// responseError turns a non-200 response into an error carrying the
// server's message. Ollama reports errors as {"error": "..."}.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error != "" {
		return fmt.Errorf("Ollama API returned %d: %s", resp.StatusCode, ae.Error)
	}
	return fmt.Errorf("Ollama API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
