package catalog

import "github.com/pario-ai/advisor/pkg/models"

// AddendumSeparator joins generated text and the structured addendum.
const AddendumSeparator = "\n\n---\n\n"

const profileAddendum = `## Recommended Insurance Portfolio

### 1. PMSBY - Accident Insurance
- **Premium:** ₹20 per year
- **Coverage:** ₹2 lakh accident protection
- **Best for:** Everyone (mandatory recommendation)
- **Apply at:** Any bank branch with Aadhaar

### 2. PMJJBY - Life Insurance
- **Premium:** ₹436 per year
- **Coverage:** ₹2 lakh life cover
- **Best for:** Families with dependents
- **Apply at:** Bank with auto-debit facility

### 3. PMJAY - Ayushman Bharat Health Insurance
- **Premium:** FREE for eligible families
- **Coverage:** ₹5 lakh per family per year
- **Best for:** Families earning < ₹1.8L annually
- **Check eligibility:** pmjay.gov.in

### 4. Atal Pension Yojana (APY)
- **Premium:** ₹42-₹291 per month (age dependent)
- **Coverage:** ₹1,000-₹5,000 monthly pension
- **Best for:** Retirement planning
- **Apply at:** Any bank

## Your Action Plan
1. **This Week:** Visit bank for PMSBY (₹20) - easiest to start
2. **Next Week:** Apply for PMJJBY if you have family
3. **Check online:** PMJAY eligibility on the official website
4. **Long-term:** Consider APY for retirement

**Total Annual Investment:** ₹456-₹3,948 (based on your needs)`

const queryAddendum = `**Quick reference**
- PMSBY: ₹20/year, ₹2 lakh accident cover, any bank with Aadhaar
- PMJJBY: ₹436/year, ₹2 lakh life cover, ages 18-50
- PMJAY: free ₹5 lakh family health cover, helpline 14555
- APY: ₹42-₹291/month for a ₹1,000-₹5,000 monthly pension`

const claimAddendum = `**Claim helplines**
- PMSBY / PMJJBY: your bank branch, national helpline 1800-180-1111
- PMJAY: 14555, pmjay.gov.in
- Keep copies of every document you submit and note the date of submission`

// Addendum returns the fixed structured content appended to generated text
// for a request category. Static lookups have no addendum.
func Addendum(c models.Category) string {
	switch c {
	case models.CategoryProfile:
		return profileAddendum
	case models.CategoryQuery:
		return queryAddendum
	case models.CategoryClaim:
		return claimAddendum
	default:
		return ""
	}
}

// Compose joins generated text with the category addendum.
func Compose(c models.Category, generated string) string {
	add := Addendum(c)
	if add == "" {
		return generated
	}
	return generated + AddendumSeparator + add
}
