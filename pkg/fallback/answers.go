package fallback

const claimsAnswer = `**Documents and claims**

For most government insurance schemes you need your Aadhaar card, the bank
account (passbook) linked to the policy, and a registered mobile number.

To file a claim, inform your bank branch within 30 days and submit the
claim form with the supporting certificate: a death certificate for life
claims (PMJJBY), or an FIR and disability or death certificate for accident
claims (PMSBY). Banks usually settle within 30-60 days and pay the nominee
directly.

For PMJAY hospital treatment show your Ayushman card at an empanelled
hospital; treatment is cashless. If a claim is delayed or rejected, ask the
bank for the reason in writing and call 14555 (PMJAY) or 1800-180-1111.`

const pmjayAnswer = `**PMJAY (Ayushman Bharat)**

PMJAY provides ₹5 lakh of free health coverage per family per year.
Check eligibility at pmjay.gov.in or call 14555.`

const pmsbyAnswer = `**PMSBY**

PMSBY costs ₹20 a year for ₹2 lakh of accident coverage. Apply at any bank
with your Aadhaar card and a savings account.`

const pmjjbyAnswer = `**PMJJBY**

PMJJBY costs ₹436 a year for ₹2 lakh of life insurance. It is available to
people aged 18-50 through their bank.`

const adviceAnswer = `**Where to start**

Almost everyone should begin with PMSBY: ₹20 a year buys ₹2 lakh of
accident cover. If anyone depends on your income, add PMJJBY for ₹436 a
year, which gives ₹2 lakh of life cover.

Check whether your family is eligible for PMJAY, which gives ₹5 lakh of free
hospital cover per year. If you want a pension later in life, Atal Pension
Yojana starts at ₹42 a month.

Visit any bank branch with your Aadhaar card and passbook to enrol; the
premiums are auto-debited every year.`

const premiumAnswer = `**What it costs**

- PMSBY accident cover: ₹20 per year for ₹2 lakh
- PMJJBY life cover: ₹436 per year for ₹2 lakh
- PMJAY health cover: free for eligible families, ₹5 lakh per year
- Atal Pension Yojana: ₹42 to ₹291 per month depending on your age at entry

PMSBY and PMJJBY together cost ₹456 a year. Premiums are auto-debited from
your bank account, so keep enough balance before the renewal date (1 June).`

const generalAnswer = `**Need more help?**

For detailed information visit your nearest bank branch or the official
government insurance websites. Keep your Aadhaar card, bank passbook and
mobile number ready.

Useful contacts: PMJAY helpline 14555 and pmjay.gov.in; for PMSBY and
PMJJBY ask at your bank or call 1800-180-1111.`
