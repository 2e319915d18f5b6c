package models

import "time"

// BackendKind selects the wire protocol of a generation backend.
type BackendKind string

const (
	BackendLocal     BackendKind = "local"     // Ollama chat API
	BackendHosted    BackendKind = "hosted"    // Hugging Face-style text generation
	BackendAnthropic BackendKind = "anthropic" // Anthropic Messages API
)

// BackendNone is reported as the used backend when the fallback answered.
const BackendNone = "none"

// GenerationOptions are the sampling parameters sent with every prompt.
type GenerationOptions struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	NumCtx      int     `json:"num_ctx" yaml:"num_ctx"`
	DoSample    bool    `json:"do_sample" yaml:"do_sample"`
}

// BackendDescriptor describes one stage of the cascade. Priority is the
// position in the configured list.
type BackendDescriptor struct {
	Name       string            `json:"name" yaml:"name"`
	Kind       BackendKind       `json:"kind" yaml:"kind"`
	Priority   int               `json:"priority" yaml:"-"`
	URL        string            `json:"url" yaml:"url"`
	APIKey     string            `json:"-" yaml:"api_key"`
	Model      string            `json:"model" yaml:"model"`
	MaxRetries int               `json:"max_retries" yaml:"max_retries"`
	Timeout    time.Duration     `json:"timeout" yaml:"timeout"`
	RateLimit  float64           `json:"rate_limit,omitempty" yaml:"rate_limit"` // requests per second, 0 = unlimited
	Options    GenerationOptions `json:"options" yaml:"options"`
}
