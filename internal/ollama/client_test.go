// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/article-engine/pkg/types"
)

func testClient(host string) *Client {
	return NewClient(types.OllamaConfig{Host: host, MaxRetries: 1})
}

// streamHandler writes chat chunks as NDJSON, capturing the request body.
func streamHandler(t *testing.T, fragments []string, gotBody *chatRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, frag := range fragments {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":false}`+"\n", frag)
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}
}

func TestChat_StreamsAndAccumulates(t *testing.T) {
	var body chatRequest
	ts := httptest.NewServer(streamHandler(t, []string{"# Title", "\n\nFirst ", "paragraph."}, &body))
	defer ts.Close()

	var deltas []string
	c := testClient(ts.URL)
	got, err := c.Chat(context.Background(), "system text", "user prompt",
		types.GenConfig{Model: "phi3:3.8b", Temperature: floatPtr(0.7)},
		func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)

	assert.Equal(t, "# Title\n\nFirst paragraph.", got)
	assert.Equal(t, []string{"# Title", "\n\nFirst ", "paragraph."}, deltas)

	// Request body carries model, both messages, and stream=true.
	assert.Equal(t, "phi3:3.8b", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "system text", body.Messages[0].Content)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.True(t, body.Stream)
	assert.InDelta(t, 0.7, body.Options["temperature"], 1e-9)
}

func TestChat_SeedOnlyWhenSet(t *testing.T) {
	tests := []struct {
		name     string
		seed     *int
		wantSeed bool
	}{
		{"seed unset", nil, false},
		{"seed set", intPtr(42), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body chatRequest
			ts := httptest.NewServer(streamHandler(t, []string{"text"}, &body))
			defer ts.Close()

			c := testClient(ts.URL)
			_, err := c.Chat(context.Background(), "s", "u",
				types.GenConfig{Model: "m", Temperature: floatPtr(0.5), Seed: tt.seed}, nil)
			require.NoError(t, err)

			_, ok := body.Options["seed"]
			assert.Equal(t, tt.wantSeed, ok)
			if tt.wantSeed {
				assert.InDelta(t, 42, body.Options["seed"], 1e-9)
			}
		})
	}
}

func TestChat_TemperatureOnlyWhenSet(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float64
		want        float64
		wantSent    bool
	}{
		{"temperature unset", nil, 0, false},
		{"temperature zero", floatPtr(0), 0, true},
		{"temperature set", floatPtr(1.2), 1.2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body chatRequest
			ts := httptest.NewServer(streamHandler(t, []string{"text"}, &body))
			defer ts.Close()

			c := testClient(ts.URL)
			_, err := c.Chat(context.Background(), "s", "u",
				types.GenConfig{Model: "m", Temperature: tt.temperature}, nil)
			require.NoError(t, err)

			got, ok := body.Options["temperature"]
			assert.Equal(t, tt.wantSent, ok)
			if tt.wantSent {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestChat_ModelNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"error":"model 'missing:latest' not found, try pulling it first"}`)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.Chat(context.Background(), "s", "u", types.GenConfig{Model: "missing"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestChat_StreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"partial"},"done":false}`)
		fmt.Fprintln(w, `{"error":"unexpected EOF from model runner"}`)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.Chat(context.Background(), "s", "u", types.GenConfig{Model: "m"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestChat_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.Chat(context.Background(), "s", "u", types.GenConfig{Model: "m"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestChat_AuthHeader(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"ok"},"done":true}`)
	}))
	defer ts.Close()

	c := NewClient(types.OllamaConfig{Host: ts.URL, AuthToken: "tok123"})
	_, err := c.Chat(context.Background(), "s", "u", types.GenConfig{Model: "m"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestVersion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/version", r.URL.Path)
		fmt.Fprintln(w, `{"version":"0.5.7"}`)
	}))
	defer ts.Close()

	v, err := testClient(ts.URL).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.5.7", v)
}

func TestVersion_Unreachable(t *testing.T) {
	c := testClient("http://127.0.0.1:1")
	_, err := c.Version(context.Background())
	require.Error(t, err)
}

func TestListModels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprintln(w, `{"models":[
			{"name":"phi3:3.8b","size":2300000000,"modified_at":"2026-08-01T10:00:00Z",
			 "details":{"parameter_size":"3.8B","quantization_level":"Q4_0"}},
			{"name":"llama3:latest","size":4700000000,"modified_at":"2026-07-15T09:00:00Z",
			 "details":{"parameter_size":"8B","quantization_level":"Q4_0"}}
		]}`)
	}))
	defer ts.Close()

	models, err := testClient(ts.URL).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "phi3:3.8b", models[0].Name)
	assert.Equal(t, "3.8B", models[0].ParameterSize)
	assert.Equal(t, int64(2300000000), models[0].Size)
}

func TestHasModel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"models":[{"name":"phi3:3.8b"},{"name":"llama3:latest"}]}`)
	}))
	defer ts.Close()

	c := testClient(ts.URL)

	tests := []struct {
		model string
		want  bool
	}{
		{"phi3:3.8b", true},
		{"llama3:latest", true},
		{"llama3", true}, // bare name matches :latest
		{"mistral", false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := c.HasModel(context.Background(), tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPull_ProgressAndSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pull", r.URL.Path)
		var pr pullRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&pr))
		assert.Equal(t, "phi3:3.8b", pr.Name)

		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"downloading sha256:abc","total":2048,"completed":1024}`)
		fmt.Fprintln(w, `{"status":"downloading sha256:abc","total":2048,"completed":2048}`)
		fmt.Fprintln(w, `{"status":"verifying sha256 digest"}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))
	defer ts.Close()

	var buf strings.Builder
	err := testClient(ts.URL).Pull(context.Background(), "phi3:3.8b", &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "pulling manifest")
	assert.Contains(t, out, "downloading sha256:abc (2.0 KiB)")
	assert.Contains(t, out, "success")
	// Repeated status lines collapse to one.
	assert.Equal(t, 1, strings.Count(out, "downloading sha256:abc"))
}

func TestPull_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"error":"pull model manifest: file does not exist"}`)
	}))
	defer ts.Close()

	var buf strings.Builder
	err := testClient(ts.URL).Pull(context.Background(), "nope", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{int64(4.7e9), "4.4 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.n))
		})
	}
}
