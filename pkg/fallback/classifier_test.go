package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/advisor/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Topic
	}{
		{"documents", "What documents do I need for a claim?", TopicClaims},
		{"claim rejected", "My claim was REJECTED by the bank", TopicClaims},
		{"recommendation", "Which scheme do you recommend for my father?", TopicAdvice},
		{"premium", "How much is the premium?", TopicPremium},
		{"pmsby", "What is PMSBY?", TopicPMSBY},
		{"ayushman", "Tell me about Ayushman Bharat", TopicPMJAY},
		{"pmjay", "how to apply for pmjay card", TopicPMJAY},
		{"pmjjby", "pmjjby age limit?", TopicPMJJBY},
		{"scheme beats premium", "How much is the premium for PMSBY?", TopicPMSBY},
		{"claims beat scheme", "documents for a PMSBY claim", TopicClaims},
		{"scheme beats advice", "should i take pmjjby", TopicPMJJBY},
		{"feel is not fee", "I feel unwell today", TopicGeneral},
		{"repay is not pay", "I want to repay my loan", TopicGeneral},
		{"paytm is not pay", "can I use paytm", TopicGeneral},
		{"disclaimer is not claim", "read the disclaimer", TopicGeneral},
		{"bestow is not best", "bestow a gift", TopicGeneral},
		{"punctuation splits words", "fee?", TopicPremium},
		{"rupee symbol", "is ₹20 enough", TopicPremium},
		{"cost", "  what does it cost  ", TopicPremium},
		{"claims beat premium", "how much time does a claim take", TopicClaims},
		{"advice beats premium", "best scheme I can afford", TopicAdvice},
		{"catch-all", "hello there", TopicGeneral},
		{"empty", "", TopicGeneral},
		{"whitespace", "   \t ", TopicGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.question))
		})
	}
}

func TestAnswerDocumentsVerbatim(t *testing.T) {
	assert.Equal(t, claimsAnswer, Answer("What documents do I need for a claim?"))
}

func TestAnswerNeverEmpty(t *testing.T) {
	for _, q := range []string{"", " ", "?", "pmsby", "नमस्ते", "claim", "premium"} {
		assert.NotEmpty(t, Answer(q), "question %q", q)
	}
}

func TestSchemeAnswers(t *testing.T) {
	assert.Contains(t, Answer("What is PMSBY?"), "₹20 a year")
	assert.Contains(t, Answer("Tell me about Ayushman Bharat"), "pmjay.gov.in")
	assert.Contains(t, Answer("pmjjby age limit?"), "18-50")
	assert.Equal(t, claimsAnswer, Answer("documents for a PMSBY claim"))
	assert.Equal(t, generalAnswer, Answer("I feel unwell today"))
}

func TestProfileAdvice(t *testing.T) {
	p := models.ProfileRequest{
		Age: 30, Occupation: "Farmer", MonthlyIncome: 7500, Location: "Pune",
		FamilySize: "2-3", Health: "Good", Goal: "Basic Protection",
	}
	got := ProfileAdvice(p)
	assert.Contains(t, got, "30 years, Farmer, ₹7500/month, Pune")
	assert.Contains(t, got, "PMSBY - Accident Shield (₹20/year)")
	assert.Contains(t, got, "PMJJBY - Family Protection (₹436/year)")
	assert.Equal(t, got, ProfileAdvice(p), "fallback must be deterministic")
}

func TestClaimHelp(t *testing.T) {
	help, ok := ClaimHelp(models.ClaimHealth)
	require.True(t, ok)
	assert.Contains(t, help, "14555")

	help, ok = ClaimHelp(models.ClaimOther)
	assert.False(t, ok)
	assert.Equal(t, genericClaimHelp, help)
}

func TestRespond(t *testing.T) {
	q := models.QueryRequest{Question: "What documents do I need for a claim?"}
	assert.Equal(t, claimsAnswer, Respond(q))
	assert.Equal(t, claimsAnswer, Respond(&q))

	claim := models.QueryRequest{Question: "hospital refused", ClaimCategory: models.ClaimHealth}
	got := Respond(claim)
	assert.Contains(t, got, "PMJAY Claim Help")
	assert.Contains(t, got, claimsAnswer)

	other := models.QueryRequest{Question: "hello", ClaimCategory: models.ClaimOther}
	assert.Equal(t, generalAnswer, Respond(other))

	assert.Equal(t, generalAnswer, Respond(models.StaticRequest{Name: "options"}))
}
