// Package fallback is the terminal, always-available responder. It answers
// from fixed, pre-authored text, performs no I/O and cannot fail.
package fallback

import (
	"strings"
	"unicode"
)

// Topic is a keyword category of a free-text question.
type Topic string

const (
	TopicClaims  Topic = "claims"
	TopicPMJAY   Topic = "pmjay"
	TopicPMSBY   Topic = "pmsby"
	TopicPMJJBY  Topic = "pmjjby"
	TopicAdvice  Topic = "advice"
	TopicPremium Topic = "premium"
	TopicGeneral Topic = "general"
)

type rule struct {
	topic    Topic
	keywords []string
	answer   string
}

// rules are tested in order; the first match wins. Single-word keywords
// match whole words only; keywords with a space or symbol match anywhere.
var rules = []rule{
	{
		topic: TopicClaims,
		keywords: []string{
			"claim", "claims", "document", "documents", "papers",
			"certificate", "certificates", "nominee", "reject", "rejected",
			"settlement", "cashless", "hospital", "hospitals",
		},
		answer: claimsAnswer,
	},
	{
		topic:    TopicPMJAY,
		keywords: []string{"pmjay", "ayushman"},
		answer:   pmjayAnswer,
	},
	{
		topic:    TopicPMSBY,
		keywords: []string{"pmsby"},
		answer:   pmsbyAnswer,
	},
	{
		topic:    TopicPMJJBY,
		keywords: []string{"pmjjby"},
		answer:   pmjjbyAnswer,
	},
	{
		topic: TopicAdvice,
		keywords: []string{
			"advice", "advise", "recommend", "recommendation", "suggest",
			"which scheme", "which insurance", "best", "should i", "suitable",
		},
		answer: adviceAnswer,
	},
	{
		topic: TopicPremium,
		keywords: []string{
			"premium", "premiums", "cost", "costs", "price", "fee", "fees",
			"how much", "cheap", "afford", "pay", "payment", "₹",
		},
		answer: premiumAnswer,
	},
}

// Classify returns the topic of a question. Empty or unmatched input is
// TopicGeneral.
func Classify(question string) Topic {
	q := normalize(question)
	if q == "" {
		return TopicGeneral
	}
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(q, notWordRune) {
		words[w] = struct{}{}
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if matches(q, words, kw) {
				return r.topic
			}
		}
	}
	return TopicGeneral
}

// Answer returns the fixed answer for the question's topic. It never
// returns an empty string.
func Answer(question string) string {
	topic := Classify(question)
	for _, r := range rules {
		if r.topic == topic {
			return r.answer
		}
	}
	return generalAnswer
}

func matches(q string, words map[string]struct{}, kw string) bool {
	if strings.IndexFunc(kw, notWordRune) >= 0 {
		return strings.Contains(q, kw)
	}
	_, ok := words[kw]
	return ok
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
