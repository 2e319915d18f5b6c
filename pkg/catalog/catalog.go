// Package catalog holds the static, non-generated content of the advisor:
// supported locales, form options and the structured product addenda that
// are appended to every generated answer.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/pario-ai/advisor/pkg/models"
)

// DefaultLocale is used when a session has not chosen one.
const DefaultLocale = "en"

// locales maps a locale code to the language name used in prompts.
var locales = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"mr": "Marathi",
	"ta": "Tamil",
	"te": "Telugu",
	"bn": "Bengali",
	"gu": "Gujarati",
	"kn": "Kannada",
}

// Language returns the prompt language for a locale code.
func Language(locale string) (string, bool) {
	name, ok := locales[locale]
	return name, ok
}

// Canonical maps a BCP 47 tag such as "hi-IN" or "TA" to a supported
// locale code.
func Canonical(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := t.Base()
	code := base.String()
	if _, ok := locales[code]; !ok {
		return "", false
	}
	return code, true
}

// Locales returns the supported locale codes, sorted.
func Locales() []string {
	out := make([]string, 0, len(locales))
	for code := range locales {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Options returns the form enumerations offered to users.
func Options() models.Options {
	return models.Options{
		Occupations:    models.Occupations,
		IncomeBrackets: models.IncomeBrackets,
		FamilySizes:    models.FamilySizes,
		HealthStatuses: models.HealthStatuses,
		FinancialGoals: models.FinancialGoals,
		ClaimTypes:     models.ClaimTypes,
		Locales:        Locales(),
	}
}

// IncomeForBracket converts a form bracket label to a monthly income.
func IncomeForBracket(label string) (int, bool) {
	for _, b := range models.IncomeBrackets {
		if b.Label == label {
			return b.Monthly, true
		}
	}
	return 0, false
}
