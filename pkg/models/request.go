package models

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidRequest is the sentinel wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// Category selects the cache TTL and the structured addendum for a request.
type Category string

const (
	CategoryProfile Category = "profile"
	CategoryQuery   Category = "query"
	CategoryClaim   Category = "claim"
	CategoryStatic  Category = "static"
)

// Request is anything the resolution pipeline can answer.
type Request interface {
	// Category reports which TTL and addendum apply.
	Category() Category
	// Fields returns every field that identifies the request, keyed by name.
	Fields() map[string]string
	// Validate returns a *ValidationError for missing or out-of-range fields.
	Validate() error
}

// ValidationError names the offending request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// ProfileRequest asks for portfolio advice for a user profile.
type ProfileRequest struct {
	Age           int    `json:"age" yaml:"age"`
	Occupation    string `json:"occupation" yaml:"occupation"`
	MonthlyIncome int    `json:"monthly_income" yaml:"monthly_income"`
	Location      string `json:"location" yaml:"location"`
	FamilySize    string `json:"family_size" yaml:"family_size"`
	Health        string `json:"health" yaml:"health"`
	Goal          string `json:"goal" yaml:"goal"`
	Locale        string `json:"locale,omitempty" yaml:"locale"`
}

// Category implements Request.
func (p ProfileRequest) Category() Category { return CategoryProfile }

// Fields implements Request.
func (p ProfileRequest) Fields() map[string]string {
	return map[string]string{
		"age":         strconv.Itoa(p.Age),
		"occupation":  p.Occupation,
		"income":      strconv.Itoa(p.MonthlyIncome),
		"location":    p.Location,
		"family_size": p.FamilySize,
		"health":      p.Health,
		"goal":        p.Goal,
		"locale":      p.Locale,
	}
}

// Validate implements Request.
func (p ProfileRequest) Validate() error {
	switch {
	case p.Age < MinAge || p.Age > MaxAge:
		return &ValidationError{Field: "age", Reason: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)}
	case !oneOf(Occupations, p.Occupation):
		return &ValidationError{Field: "occupation", Reason: fmt.Sprintf("%q is not a known occupation", p.Occupation)}
	case p.MonthlyIncome < 0:
		return &ValidationError{Field: "monthly_income", Reason: "must not be negative"}
	case strings.TrimSpace(p.Location) == "":
		return &ValidationError{Field: "location", Reason: "is required"}
	case !oneOf(FamilySizes, p.FamilySize):
		return &ValidationError{Field: "family_size", Reason: fmt.Sprintf("%q is not a known family size", p.FamilySize)}
	case !oneOf(HealthStatuses, p.Health):
		return &ValidationError{Field: "health", Reason: fmt.Sprintf("%q is not a known health status", p.Health)}
	case !oneOf(FinancialGoals, p.Goal):
		return &ValidationError{Field: "goal", Reason: fmt.Sprintf("%q is not a known financial goal", p.Goal)}
	}
	return nil
}

// QueryRequest is a free-text question, optionally about a specific claim type.
type QueryRequest struct {
	Question      string `json:"question" yaml:"question"`
	ClaimCategory string `json:"claim_category,omitempty" yaml:"claim_category"`
	Locale        string `json:"locale,omitempty" yaml:"locale"`
}

// Category implements Request. Queries that name a claim type are claims.
func (q QueryRequest) Category() Category {
	if q.ClaimCategory != "" {
		return CategoryClaim
	}
	return CategoryQuery
}

// Fields implements Request.
func (q QueryRequest) Fields() map[string]string {
	return map[string]string{
		"question":       q.Question,
		"claim_category": q.ClaimCategory,
		"locale":         q.Locale,
	}
}

// Validate implements Request.
func (q QueryRequest) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return &ValidationError{Field: "question", Reason: "is required"}
	}
	if q.ClaimCategory != "" && !oneOf(ClaimTypes, q.ClaimCategory) {
		return &ValidationError{Field: "claim_category", Reason: fmt.Sprintf("%q is not a known claim type", q.ClaimCategory)}
	}
	return nil
}

// StaticRequest identifies a non-generated lookup such as the option catalog.
type StaticRequest struct {
	Name string
}

// Category implements Request.
func (s StaticRequest) Category() Category { return CategoryStatic }

// Fields implements Request.
func (s StaticRequest) Fields() map[string]string {
	return map[string]string{"name": s.Name}
}

// Validate implements Request.
func (s StaticRequest) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

func oneOf(options []string, v string) bool {
	return slices.Contains(options, v)
}
