package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/fallback"
	"github.com/pario-ai/advisor/pkg/models"
	"github.com/pario-ai/advisor/pkg/session"
)

type adviceArgs struct {
	models.ProfileRequest
	IncomeBracket string `json:"income_bracket"`
}

type askArgs struct {
	Question string `json:"question"`
	Locale   string `json:"locale"`
}

type claimHelpArgs struct {
	ClaimType string `json:"claim_type"`
	Issue     string `json:"issue"`
	Locale    string `json:"locale"`
}

type historyArgs struct {
	N int `json:"n"`
}

type statsArgs struct {
	Since string `json:"since"`
}

type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"advisor_advice":      handleAdvice,
	"advisor_ask":         handleAsk,
	"advisor_claim_help":  handleClaimHelp,
	"advisor_cache_stats": handleCacheStats,
	"advisor_options":     handleOptions,
	"advisor_history":     handleHistory,
	"advisor_stats":       handleStats,
}

func stringProp(desc string, enum ...string) map[string]any {
	p := map[string]any{"type": "string", "description": desc}
	if len(enum) > 0 {
		p["enum"] = enum
	}
	return p
}

func readOnly(title string) *ToolAnnotations {
	return &ToolAnnotations{Title: title, ReadOnlyHint: true, IdempotentHint: true}
}

var allTools = []ToolDefinition{
	{
		Name:        "advisor_advice",
		Annotations: &ToolAnnotations{Title: "Insurance advice", OpenWorldHint: true},
		Description: "Recommend micro-insurance schemes for a user profile.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"age", "occupation", "location", "family_size", "health", "goal"},
			"properties": map[string]any{
				"age":            map[string]any{"type": "integer", "minimum": models.MinAge, "maximum": models.MaxAge},
				"occupation":     stringProp("Occupation", models.Occupations...),
				"monthly_income": map[string]any{"type": "integer", "description": "Monthly income in rupees"},
				"income_bracket": stringProp("Income bracket label, used when monthly_income is omitted"),
				"location":       stringProp("City or district"),
				"family_size":    stringProp("Family size", models.FamilySizes...),
				"health":         stringProp("Health status", models.HealthStatuses...),
				"goal":           stringProp("Financial goal", models.FinancialGoals...),
				"locale":         stringProp("Answer language", catalog.Locales()...),
			},
		},
	},
	{
		Name:        "advisor_ask",
		Annotations: &ToolAnnotations{Title: "Ask a question", OpenWorldHint: true},
		Description: "Answer a free-text insurance question.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"question"},
			"properties": map[string]any{
				"question": stringProp("The question"),
				"locale":   stringProp("Answer language", catalog.Locales()...),
			},
		},
	},
	{
		Name:        "advisor_claim_help",
		Annotations: &ToolAnnotations{Title: "Claim help", OpenWorldHint: true},
		Description: "Explain the claim process for a scheme and help with a specific issue.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"claim_type", "issue"},
			"properties": map[string]any{
				"claim_type": stringProp("Claim type", models.ClaimTypes...),
				"issue":      stringProp("What went wrong or what help is needed"),
				"locale":     stringProp("Answer language", catalog.Locales()...),
			},
		},
	},
	{
		Name:        "advisor_cache_stats",
		Annotations: readOnly("Cache statistics"),
		Description: "Show response cache statistics (entries, hits, misses, hit rate).",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	},
	{
		Name:        "advisor_options",
		Annotations: readOnly("Form options"),
		Description: "List the accepted profile options, claim types and locales.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	},
	{
		Name:        "advisor_history",
		Annotations: readOnly("Conversation history"),
		Description: "Show the most recent questions and answers of this connection.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"n": map[string]any{"type": "integer", "description": "Number of records (default 5, at most the log retention)"},
			},
		},
	},
	{
		Name:        "advisor_stats",
		Annotations: readOnly("Resolution statistics"),
		Description: "Summarize resolutions per category and backend from the journal.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"since": stringProp("Look-back window as a Go duration, e.g. 24h (default 24h)"),
			},
		},
	},
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// failure renders a pipeline error for the model calling the tool.
func failure(err error) ToolCallResult {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return errorResult(err.Error())
	case errors.Is(err, session.ErrBusy):
		return errorResult("Another request is still being processed.")
	default:
		return errorResult("Error: " + err.Error())
	}
}

func handleAdvice(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args adviceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	if args.MonthlyIncome == 0 && args.IncomeBracket != "" {
		income, ok := catalog.IncomeForBracket(args.IncomeBracket)
		if !ok {
			return errorResult("unknown income bracket: " + args.IncomeBracket)
		}
		args.MonthlyIncome = income
	}
	res, err := s.advisor.Advise(ctx, s.session, args.ProfileRequest)
	if err != nil {
		return failure(err)
	}
	return textResult(formatResult(res))
}

func handleAsk(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args askArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	res, err := s.advisor.Ask(ctx, s.session, models.QueryRequest{Question: args.Question, Locale: args.Locale})
	if err != nil {
		return failure(err)
	}
	return textResult(formatResult(res))
}

func handleClaimHelp(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args claimHelpArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	if args.ClaimType == "" {
		return errorResult("claim_type is required")
	}
	if args.Issue == "" {
		help, _ := fallback.ClaimHelp(args.ClaimType)
		return textResult(help)
	}
	res, err := s.advisor.Ask(ctx, s.session, models.QueryRequest{
		Question:      args.Issue,
		ClaimCategory: args.ClaimType,
		Locale:        args.Locale,
	})
	if err != nil {
		return failure(err)
	}
	return textResult(formatResult(res))
}

func handleCacheStats(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	stats, err := s.advisor.CacheStats()
	if err != nil {
		return errorResult("Error fetching cache stats: " + err.Error())
	}
	return textResult(formatCacheStats(stats))
}

func handleOptions(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	opts, err := s.advisor.Options(ctx)
	if err != nil {
		return errorResult("Error loading options: " + err.Error())
	}
	return textResult(formatOptions(opts))
}

func handleHistory(_ context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	args := historyArgs{N: 5}
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	if limit := s.session.Log().Retention(); args.N < 0 || args.N > limit {
		return errorResult(fmt.Sprintf("n must be between 0 and %d", limit))
	}
	return textResult(formatHistory(s.session.Log().Recent(args.N)))
}

func handleStats(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	j := s.advisor.Journal()
	if j == nil {
		return textResult("The resolution journal is not enabled.")
	}
	var args statsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	window := 24 * time.Hour
	if args.Since != "" {
		d, err := time.ParseDuration(args.Since)
		if err != nil {
			return errorResult("Invalid since duration: " + err.Error())
		}
		window = d
	}
	sums, err := j.Summary(ctx, time.Now().Add(-window))
	if err != nil {
		return errorResult("Error fetching stats: " + err.Error())
	}
	return textResult(formatSummary(sums))
}
