package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Streaming generation requests
	// ignore it; connection establishment still honors it.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "article-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OllamaConfig holds settings for the Ollama backend.
// Per prd002-generation R5.1-R5.4.
type OllamaConfig struct {
	HTTPConfig `yaml:",inline"`

	// Host is the Ollama server base URL (default "http://localhost:11434").
	Host string `json:"host" yaml:"host"`

	// AuthToken is an optional bearer token for remote Ollama deployments.
	AuthToken string `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DefaultOllamaHost is used when no host is configured.
const DefaultOllamaHost = "http://localhost:11434"

// GenerationConfig holds settings for the generation stage.
// Per prd002-generation R2.1-R2.4.
type GenerationConfig struct {
	// Gen holds the default model parameters, overridable per request.
	Gen GenConfig `yaml:",inline"`

	// OutputDir is the directory for generated articles
	// (default "output/articles").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Concurrency bounds parallel generations in batch mode (default 1:
	// a single local model serializes anyway; raise it for remote hosts).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// MaxRetries is the number of retry attempts for failed generations
	// (default 2). Failures after streaming has started are not retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LibraryConfig holds settings for the article library.
// Per prd004-library R1.1, R2.3.
type LibraryConfig struct {
	// LibraryDir is the base directory for the library (contains index/).
	LibraryDir string `json:"library_dir" yaml:"library_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP API server.
// Per prd005-service R1.1-R1.4.
type ServerConfig struct {
	// Listen is the address the server binds to (default ":8080").
	Listen string `json:"listen" yaml:"listen"`

	// RateLimit is the per-client request limit per minute (default 30).
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	Ollama     OllamaConfig     `json:"ollama" yaml:"ollama"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Library    LibraryConfig    `json:"library" yaml:"library"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}
