// Package chatbot implements the deterministic query pipeline: intent
// classification, system prompt synthesis, query augmentation and response
// post-processing. All of it is pure string work; the model call lives in
// the mistral package.
package chatbot

import "strings"

// Language values reported by Classify.
const (
	LanguageHindi   = "hindi"
	LanguageEnglish = "english"
)

// IntentFlags holds the independent intent categories detected in a query.
// Categories are not mutually exclusive; a query can set several at once.
type IntentFlags struct {
	FuturePlan        bool   `json:"is_future_plan_query"`
	Investment        bool   `json:"is_investment_query"`
	SipVsLumpSum      bool   `json:"is_sip_vs_lump_sum_query"`
	StockVsMutualFund bool   `json:"is_stock_vs_mutual_fund_query"`
	Tax               bool   `json:"is_tax_query"`
	Insurance         bool   `json:"is_insurance_query"`
	Retirement        bool   `json:"is_retirement_query"`
	Loan              bool   `json:"is_loan_query"`
	Language          string `json:"language"`
}

var (
	futurePlanKeywords = []string{
		"future", "plan", "advice", "suggest", "recommendation",
		"भविष्य", "योजना", "सलाह", "सुझाव",
	}
	investmentKeywords = []string{
		"invest", "stock", "sip", "mutual fund", "equity", "bond",
		"निवेश", "स्टॉक", "शेयर", "म्यूचुअल फंड", "इक्विटी",
	}
	sipVsLumpSumKeywords = []string{
		"sip vs", "sip or lump", "lump sum", "monthly invest",
		"एसआईपी", "मासिक निवेश", "एकमुश्त निवेश",
	}
	stockVsMutualFundKeywords = []string{
		"stock vs", "stock or mutual", "direct equity",
		"स्टॉक या म्यूचुअल फंड", "शेयर या फंड", "डायरेक्ट इक्विटी",
	}
	taxKeywords = []string{
		"tax", "section 80c", "deduction", "exemption",
		"कर", "धारा 80c", "कटौती", "छूट",
	}
	insuranceKeywords = []string{
		"insurance", "policy", "premium", "cover", "claim",
		"बीमा", "पॉलिसी", "प्रीमियम", "कवर", "दावा",
	}
	retirementKeywords = []string{
		"retirement", "pension", "senior citizen", "old age",
		"सेवानिवृत्ति", "पेंशन", "वरिष्ठ नागरिक", "बुढ़ापा",
	}
	loanKeywords = []string{
		"loan", "emi", "interest", "borrow",
		"कर्ज", "ऋण", "ब्याज", "ईएमआई",
	}
)

// Classify inspects the query text and returns the matching intent flags.
// Matching is case-insensitive substring containment with no word
// boundaries, so "investment" sets the investment flag via "invest".
func Classify(query string) IntentFlags {
	q := strings.ToLower(query)

	return IntentFlags{
		FuturePlan:        containsAny(q, futurePlanKeywords),
		Investment:        containsAny(q, investmentKeywords),
		SipVsLumpSum:      containsAny(q, sipVsLumpSumKeywords),
		StockVsMutualFund: containsAny(q, stockVsMutualFundKeywords),
		Tax:               containsAny(q, taxKeywords),
		Insurance:         containsAny(q, insuranceKeywords),
		Retirement:        containsAny(q, retirementKeywords),
		Loan:              containsAny(q, loanKeywords),
		Language:          DetectLanguage(query),
	}
}

// DetectLanguage returns "hindi" when the text contains any Devanagari
// rune (U+0900 through U+097F), "english" otherwise.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return LanguageHindi
		}
	}
	return LanguageEnglish
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
