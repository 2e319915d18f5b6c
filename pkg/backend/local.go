package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pario-ai/advisor/pkg/models"
)

// DefaultLocalURL is the address of a local Ollama server.
const DefaultLocalURL = "http://localhost:11434"

// Local calls the Ollama chat API.
type Local struct {
	name    string
	url     string
	model   string
	options models.GenerationOptions
	client  *http.Client
}

// NewLocal creates a Local backend from a descriptor.
func NewLocal(d models.BackendDescriptor) *Local {
	u := d.URL
	if u == "" {
		u = DefaultLocalURL
	}
	return &Local{
		name:    d.Name,
		url:     strings.TrimRight(u, "/"),
		model:   d.Model,
		options: d.Options,
		client:  &http.Client{},
	}
}

// Name implements Backend.
func (l *Local) Name() string { return l.name }

// Generate implements Backend.
func (l *Local) Generate(ctx context.Context, p Prompt) (string, error) {
	var messages []models.ChatMessage
	if p.System != "" {
		messages = append(messages, models.ChatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, models.ChatMessage{Role: "user", Content: p.User})

	req := models.OllamaChatRequest{
		Model:    l.model,
		Messages: messages,
		Stream:   false,
		Options: models.OllamaOptions{
			Temperature: l.options.Temperature,
			TopP:        l.options.TopP,
			NumPredict:  l.options.MaxTokens,
			NumCtx:      l.options.NumCtx,
		},
	}

	res, err := postJSON(ctx, l.client, l.name, l.url+"/api/chat", nil, req)
	if err != nil {
		return "", err
	}
	if err := statusError(l.name, res); err != nil {
		return "", err
	}

	var chat models.OllamaChatResponse
	if err := json.Unmarshal(res.body, &chat); err != nil {
		return "", Malformed(l.name, eris.Wrap(err, "decode chat response"))
	}
	if chat.Error != "" {
		return "", Unavailable(l.name, res.statusCode, eris.New(chat.Error))
	}
	return checkText(l.name, chat.Message.Content)
}
