package models

// Profile bounds.
const (
	MinAge = 18
	MaxAge = 100
)

// Claim types accepted on a QueryRequest.
const (
	ClaimAccident = "Accident Claim (PMSBY)"
	ClaimLife     = "Life Insurance Claim (PMJJBY)"
	ClaimHealth   = "Health Insurance Claim (PMJAY)"
	ClaimOther    = "Other Government Scheme"
)

// Form enumerations. These mirror the options offered by the input form.
var (
	Occupations = []string{
		"Farmer", "Driver", "Teacher", "Shopkeeper",
		"Labor Worker", "Government Employee", "Self Employed",
		"Private Employee", "Student", "Retired", "Other",
	}
	FamilySizes    = []string{"1", "2-3", "4-5", "6+"}
	HealthStatuses = []string{"Excellent", "Good", "Fair", "Have medical conditions", "Prefer not to say"}
	FinancialGoals = []string{
		"Basic Protection", "Family Security", "Health Coverage",
		"Retirement Planning", "Child Education", "Wealth Building",
	}
	ClaimTypes = []string{ClaimAccident, ClaimLife, ClaimHealth, ClaimOther}
)

// IncomeBracket maps a form income bracket to the monthly figure used in prompts.
type IncomeBracket struct {
	Label   string `json:"label"`
	Monthly int    `json:"monthly"`
}

// IncomeBrackets lists the form brackets in display order.
var IncomeBrackets = []IncomeBracket{
	{Label: "₹0-5,000", Monthly: 2500},
	{Label: "₹5,000-10,000", Monthly: 7500},
	{Label: "₹10,000-15,000", Monthly: 12500},
	{Label: "₹15,000-25,000", Monthly: 20000},
	{Label: "₹25,000-50,000", Monthly: 37500},
	{Label: "₹50,000+", Monthly: 75000},
}

// Options is the full set of form enumerations.
type Options struct {
	Occupations    []string        `json:"occupations"`
	IncomeBrackets []IncomeBracket `json:"income_brackets"`
	FamilySizes    []string        `json:"family_sizes"`
	HealthStatuses []string        `json:"health_statuses"`
	FinancialGoals []string        `json:"financial_goals"`
	ClaimTypes     []string        `json:"claim_types"`
	Locales        []string        `json:"locales"`
}
