package backend

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/pario-ai/advisor/pkg/models"
)

// statusOverloaded is Anthropic's "overloaded_error" status.
const statusOverloaded = 529

// Anthropic calls the Anthropic Messages API through the official SDK.
type Anthropic struct {
	name    string
	model   string
	options models.GenerationOptions
	client  sdk.Client
}

// NewAnthropic creates an Anthropic backend from a descriptor. SDK retries
// are disabled because the cascade owns the attempt budget.
func NewAnthropic(d models.BackendDescriptor) *Anthropic {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if d.APIKey != "" {
		opts = append(opts, option.WithAPIKey(d.APIKey))
	}
	if d.URL != "" {
		opts = append(opts, option.WithBaseURL(d.URL))
	}
	return &Anthropic{
		name:    d.Name,
		model:   d.Model,
		options: d.Options,
		client:  sdk.NewClient(opts...),
	}
}

// Name implements Backend.
func (a *Anthropic) Name() string { return a.name }

// Generate implements Backend.
func (a *Anthropic) Generate(ctx context.Context, p Prompt) (string, error) {
	maxTokens := int64(a.options.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 512
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(p.User)),
		},
		Temperature: sdk.Float(a.options.Temperature),
	}
	if p.System != "" {
		params.System = []sdk.TextBlockParam{{Text: p.System}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", a.classify(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return checkText(a.name, b.String())
}

func (a *Anthropic) classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, statusOverloaded:
			return Overloaded(a.name, apiErr.StatusCode, eris.Wrap(err, "anthropic: create message"))
		default:
			return Unavailable(a.name, apiErr.StatusCode, eris.Wrap(err, "anthropic: create message"))
		}
	}
	return Unavailable(a.name, 0, eris.Wrap(err, "anthropic: create message"))
}
