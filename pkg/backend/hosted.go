package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pario-ai/advisor/pkg/models"
)

// DefaultHostedURL is the hosted inference API base.
const DefaultHostedURL = "https://api-inference.huggingface.co"

// Hosted calls a Hugging Face-style text-generation endpoint.
type Hosted struct {
	name     string
	endpoint string
	apiKey   string
	options  models.GenerationOptions
	client   *http.Client
}

// NewHosted creates a Hosted backend from a descriptor. The request goes to
// {url}/models/{model}.
func NewHosted(d models.BackendDescriptor) *Hosted {
	u := d.URL
	if u == "" {
		u = DefaultHostedURL
	}
	return &Hosted{
		name:     d.Name,
		endpoint: strings.TrimRight(u, "/") + "/models/" + d.Model,
		apiKey:   d.APIKey,
		options:  d.Options,
		client:   &http.Client{},
	}
}

// Name implements Backend.
func (h *Hosted) Name() string { return h.name }

// Generate implements Backend.
func (h *Hosted) Generate(ctx context.Context, p Prompt) (string, error) {
	input := p.Text()
	req := models.TextGenerationRequest{
		Inputs: input,
		Parameters: models.TextGenerationParameters{
			MaxLength:   h.options.MaxTokens,
			Temperature: h.options.Temperature,
			DoSample:    h.options.DoSample,
		},
	}

	var headers map[string]string
	if h.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + h.apiKey}
	}

	res, err := postJSON(ctx, h.client, h.name, h.endpoint, headers, req)
	if err != nil {
		return "", err
	}
	if err := statusError(h.name, res); err != nil {
		return "", err
	}

	text, err := decodeGeneration(res.body)
	if err != nil {
		return "", Malformed(h.name, err)
	}
	// Text-generation endpoints echo the prompt unless told otherwise.
	text = strings.TrimPrefix(text, input)
	return checkText(h.name, text)
}

// decodeGeneration accepts both the list and the single-object reply shapes.
func decodeGeneration(body []byte) (string, error) {
	var list []models.TextGenerationResult
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return "", eris.New("empty result list")
		}
		return list[0].GeneratedText, nil
	}

	var single models.TextGenerationResult
	if err := json.Unmarshal(body, &single); err != nil {
		return "", eris.Wrap(err, "decode generation")
	}
	return single.GeneratedText, nil
}
