package mcp

import (
	"fmt"
	"strings"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/models"
)

func formatResult(res advisor.Result) string {
	source := res.Backend
	switch {
	case res.CacheHit:
		source = "cache"
	case source == models.BackendNone:
		source = "offline guidance"
	}
	return fmt.Sprintf("%s\n\n(source: %s)", res.Text, source)
}

// formatSummary renders resolution summaries as a text table.
func formatSummary(rows []models.ResolutionSummary) string {
	if len(rows) == 0 {
		return "No resolutions recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-20s %8s %10s %12s\n", "Category", "Backend", "Requests", "Cache Hits", "Avg Latency")
	b.WriteString(strings.Repeat("-", 64) + "\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %-20s %8d %10d %10.0fms\n",
			r.Category, r.Backend, r.Count, r.CacheHits, r.AvgLatencyMs)
	}
	return b.String()
}

// formatCacheStats formats cache stats as text.
func formatCacheStats(stats models.CacheStats) string {
	return fmt.Sprintf("Cache Statistics\n"+
		"  Entries:  %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Hit Rate: %.1f%%\n",
		stats.Entries, stats.Hits, stats.Misses, stats.HitRate())
}

func formatOptions(o models.Options) string {
	var b strings.Builder
	list := func(title string, items []string) {
		fmt.Fprintf(&b, "%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "  - %s\n", it)
		}
	}
	list("Occupations", o.Occupations)
	brackets := make([]string, len(o.IncomeBrackets))
	for i, ib := range o.IncomeBrackets {
		brackets[i] = fmt.Sprintf("%s (₹%d/month)", ib.Label, ib.Monthly)
	}
	list("Income brackets", brackets)
	list("Family sizes", o.FamilySizes)
	list("Health statuses", o.HealthStatuses)
	list("Financial goals", o.FinancialGoals)
	list("Claim types", o.ClaimTypes)
	list("Locales", o.Locales)
	return b.String()
}

func formatHistory(records []models.ConversationRecord) string {
	if len(records) == 0 {
		return "No questions asked yet."
	}
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] Q: %s\nA: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"), r.Question, r.Answer)
	}
	return b.String()
}
