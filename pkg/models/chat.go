package models

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaOptions are the generation options understood by the Ollama chat API.
type OllamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

// OllamaChatRequest is a non-streaming /api/chat request.
type OllamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  OllamaOptions `json:"options"`
}

// OllamaChatResponse is a non-streaming /api/chat response.
type OllamaChatResponse struct {
	Model   string      `json:"model"`
	Message ChatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// TextGenerationParameters are the hosted text-generation parameters.
type TextGenerationParameters struct {
	MaxLength   int     `json:"max_length,omitempty"`
	Temperature float64 `json:"temperature"`
	DoSample    bool    `json:"do_sample"`
}

// TextGenerationRequest is a hosted inference request.
type TextGenerationRequest struct {
	Inputs     string                   `json:"inputs"`
	Parameters TextGenerationParameters `json:"parameters"`
}

// TextGenerationResult is one element of a hosted inference response.
type TextGenerationResult struct {
	GeneratedText string `json:"generated_text"`
}

// TextGenerationError is the error body returned by hosted inference.
type TextGenerationError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}
