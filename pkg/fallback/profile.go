package fallback

import (
	"fmt"

	"github.com/pario-ai/advisor/pkg/models"
)

const profileTemplate = `## Smart Insurance Recommendations

**Your Profile:** %d years, %s, ₹%d/month, %s

### Essential Coverage Portfolio

**1. PMSBY - Accident Shield (₹20/year)**
- India's cheapest accident insurance
- ₹2 lakh coverage for workplace/travel accidents
- Must-have for all working individuals

**2. PMJJBY - Family Protection (₹436/year)**
- ₹2 lakh life insurance coverage
- Automatic premium deduction
- Ideal for families with children

**3. PMJAY - Free Healthcare (₹0/year)**
- Completely FREE for eligible families
- ₹5 lakh hospitalization coverage
- Covers 1,400+ procedures

**4. State Health Insurance**
- Check your state's specific schemes
- Often provides additional coverage
- May cover outpatient treatments

### Quick Action Steps
1. **Today:** Check PMJAY eligibility online
2. **This week:** Visit nearest bank with Aadhaar
3. **Apply for:** PMSBY first (lowest cost, high value)

**Your Total Protection Cost: ₹456/year for complete family coverage!**`

// ProfileAdvice returns the fixed portfolio recommendation for a profile.
func ProfileAdvice(p models.ProfileRequest) string {
	return fmt.Sprintf(profileTemplate, p.Age, p.Occupation, p.MonthlyIncome, p.Location)
}

var claimHelp = map[string]string{
	models.ClaimAccident: `**PMSBY Claim Process**
1. Contact your bank immediately
2. Submit the claim form within 30 days
3. Required: death certificate or disability certificate, FIR copy
4. Timeline: 30-60 days
5. Helpline: 1800-180-1111`,
	models.ClaimLife: `**PMJJBY Claim Process**
1. Inform the bank within 30 days
2. Submit the death certificate and claim form
3. The bank processes the claim within 30 days
4. The amount is credited to the nominee's account
5. Helpline: contact your bank`,
	models.ClaimHealth: `**PMJAY Claim Help**
1. Visit an empanelled hospital
2. Show your Ayushman card at admission
3. Treatment is cashless for eligible procedures
4. For issues call 14555
5. Website: pmjay.gov.in`,
}

const genericClaimHelp = "Contact your insurance provider or bank for specific guidance. " +
	"Keep your policy details, Aadhaar card and bank passbook ready."

// ClaimHelp returns the fixed claim process for a claim type. Unknown
// types get generic guidance and false.
func ClaimHelp(claimType string) (string, bool) {
	if help, ok := claimHelp[claimType]; ok {
		return help, true
	}
	return genericClaimHelp, false
}

// Respond answers any request without I/O. Profiles get the fixed portfolio,
// claim queries the claim process for their type, and other queries the
// answer for their keyword topic.
func Respond(req models.Request) string {
	switch r := req.(type) {
	case models.ProfileRequest:
		return ProfileAdvice(r)
	case *models.ProfileRequest:
		return ProfileAdvice(*r)
	case models.QueryRequest:
		return respondQuery(r)
	case *models.QueryRequest:
		return respondQuery(*r)
	default:
		return generalAnswer
	}
}

func respondQuery(q models.QueryRequest) string {
	if q.ClaimCategory != "" {
		if help, ok := ClaimHelp(q.ClaimCategory); ok {
			return help + "\n\n" + Answer(q.Question)
		}
	}
	return Answer(q.Question)
}
