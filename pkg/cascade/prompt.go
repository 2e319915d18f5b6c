package cascade

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pario-ai/advisor/pkg/backend"
	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/models"
)

const systemPrompt = "You are an insurance advisor for low-income households in India. " +
	"Prefer government micro-insurance schemes (PMSBY, PMJJBY, PMJAY) and keep answers brief and practical."

// BuildPrompt renders the generation prompt for req.
func BuildPrompt(req models.Request) backend.Prompt {
	var user string
	locale := catalog.DefaultLocale

	switch r := req.(type) {
	case models.ProfileRequest:
		user, locale = profilePrompt(r), r.Locale
	case *models.ProfileRequest:
		user, locale = profilePrompt(*r), r.Locale
	case models.QueryRequest:
		user, locale = queryPrompt(r), r.Locale
	case *models.QueryRequest:
		user, locale = queryPrompt(*r), r.Locale
	default:
		user = fmt.Sprintf("Describe %s.", strings.Join(sortedValues(req.Fields()), ", "))
	}

	system := systemPrompt
	if lang, ok := catalog.Language(locale); ok && locale != catalog.DefaultLocale {
		system += " Respond in " + lang + "."
	}
	return backend.Prompt{System: system, User: user}
}

func profilePrompt(p models.ProfileRequest) string {
	return fmt.Sprintf(`Quick advice needed:

Profile: %dyr %s, ₹%d/month, %s, family: %s
Goal: %s
Health: %s

Recommend the top 3 insurance schemes with:
- Premium cost
- Coverage amount
- Why suitable
- How to apply

Focus on PMSBY, PMJJBY, PMJAY. Keep it brief.`,
		p.Age, p.Occupation, p.MonthlyIncome, p.Location, p.FamilySize, p.Goal, p.Health)
}

func queryPrompt(q models.QueryRequest) string {
	if q.ClaimCategory != "" {
		return fmt.Sprintf(`Insurance claim help:

Type: %s
Issue: %s

Quick help needed:
1. What to do now
2. Documents needed
3. Contact info
4. Timeline

Keep it brief, actionable advice only.`, q.ClaimCategory, q.Question)
	}
	return fmt.Sprintf(`Q: %s

Give a brief, practical answer in 2-3 lines. Focus on actionable steps.`, q.Question)
}

func sortedValues(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	// Map order is random; keep prompts deterministic.
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fields[k])
	}
	return out
}
