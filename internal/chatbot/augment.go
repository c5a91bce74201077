package chatbot

import (
	"fmt"
	"strings"

	"github.com/niveshpath/backend/internal/profile"
)

// AugmentQuery wraps the raw user query with an annotation telling the
// model how to use the profile. Branches are first-match-wins: profile
// completion, future planning, investment, SIP vs lump sum, stocks vs
// mutual funds, then the generic personalization annotation.
func AugmentQuery(query string, flags IntentFlags, verdict profile.CompletenessVerdict, p *profile.ProfileSnapshot) string {
	pers := PersonalizationFrom(p)

	ageAnalysis := ageAnalysisHindi(pers.Age)
	incomeAnalysis := incomeAnalysisHindi(pers.Income)
	locationAnalysis := locationAnalysisHindi(pers.Location)
	occupationAnalysis := occupationAnalysisHindi(pers.Occupation)
	psychAnalysis := psychologicalAnalysisHindi(pers.Psychological)

	switch {
	case strings.Contains(strings.ToLower(query), "profile") && !verdict.Complete:
		return fmt.Sprintf("%s (Note: User is asking about profile completion. Their profile is %d%% complete, missing: %s. Please guide them on how to complete these specific fields in a conversational, helpful manner. FORMAT RESPONSE: 1) Present missing fields in a TABLE with field name and importance, 2) Use BULLET POINTS for steps to complete profile, 3) Use PARAGRAPHS for general explanations, and 4) Include EXAMPLES of how providing this information will lead to better financial advice. For example, if age is missing, explain how different age groups receive different investment strategies. Use a conversational, friendly tone with natural language flow.)",
			query, verdict.CompletionPercentage, strings.Join(verdict.MissingFields, ", "))

	case flags.FuturePlan:
		return fmt.Sprintf("%s (Note: This is a future planning query. ANALYZE the user's profile data: Name: %s, Age: %s, Income: %s, Risk Profile: %s, Financial Goals: %s. %s %s %s %s %s\n\nProvide personalized advice based ONLY on this profile data with detailed analysis of age, income, location, and occupation implications. FORMAT YOUR RESPONSE: 1) Present investment options in a comparison TABLE with columns for investment type, risk level, expected returns, and minimum investment. 2) Use BULLET POINTS for listing steps, recommendations, or options. 3) Use NUMBERED STEPS for explaining complex financial concepts. 4) Use BOLD text for highlighting key financial metrics or important figures. 5) Present any tax implications in a structured format with clear headings. Use a conversational, friendly tone with natural language flow. Include relatable examples and analogies that connect with the user's specific situation. Vary your sentence structure and use a mix of short and detailed explanations. If responding in Hindi, use natural conversational Hindi rather than formal language. If critical information is missing, suggest completing the profile first in a friendly, encouraging way that explains the benefits of providing this information.)",
			query, orNotProvided(pers.Name), intOrNotProvided(pers.Age), int64OrNotProvided(pers.Income), orNotProvided(pers.RiskProfile), goalsOrNotProvided(pers.Goals),
			ageAnalysis, incomeAnalysis, locationAnalysis, occupationAnalysis, psychAnalysis)

	case flags.Investment:
		return fmt.Sprintf("%s (Note: This is an investment query. ANALYZE the user's investment profile: Age: %s, Income: %s, Risk Profile: %s. %s %s %s %s\n\nProvide SPECIFIC investment recommendations based on the user's profile. FORMAT YOUR RESPONSE: 1) Present a comparison TABLE of recommended investment options with columns for: investment name, risk level, expected returns (%%), minimum investment amount, lock-in period, and tax implications. 2) For each recommended investment, provide EXACT fund names or investment vehicles (not just asset classes). 3) Include a separate section on tax optimization strategies relevant to their income bracket. 4) Recommend SPECIFIC SIP amounts or lump sum investments based on their income level. 5) Include a small section on market timing considerations if relevant. Use a conversational, friendly tone and tailor your communication style to match their psychological profile.)",
			query, intOrNotProvided(pers.Age), int64OrNotProvided(pers.Income), orNotProvided(pers.RiskProfile),
			ageAnalysis, incomeAnalysis, locationAnalysis, psychAnalysis)

	case flags.SipVsLumpSum:
		return fmt.Sprintf("%s (Note: This is a SIP vs Lump Sum query. ANALYZE the user's profile: Age: %s, Income: %s, Risk Profile: %s. %s %s %s\n\nProvide a DETAILED COMPARISON between SIP and lump sum investments specifically tailored to this user's situation. FORMAT YOUR RESPONSE: 1) Create a comprehensive comparison TABLE with rows for: definition, best suited for, market condition advantage, risk management, return potential, psychological benefits, flexibility, and recommended allocation based on user profile. 2) Include a PERSONALIZED RECOMMENDATION section stating whether they should prefer SIP, lump sum, or a combination approach with EXACT percentages. 3) Show a 5-YEAR PROJECTION comparing returns from both approaches using realistic market scenarios and the user's potential investment amount (estimated from their income). 4) Include a section on TAX IMPLICATIONS for both approaches. Use a conversational, friendly tone and tailor your communication style to match their psychological profile.)",
			query, intOrNotProvided(pers.Age), int64OrNotProvided(pers.Income), orNotProvided(pers.RiskProfile),
			ageAnalysis, incomeAnalysis, psychAnalysis)

	case flags.StockVsMutualFund:
		return fmt.Sprintf("%s (Note: This is a Stocks vs Mutual Funds query. ANALYZE the user's profile: Age: %s, Income: %s, Risk Profile: %s. %s %s %s\n\nProvide a DETAILED COMPARISON between direct stock investments and mutual funds specifically tailored to this user's situation. FORMAT YOUR RESPONSE: 1) Create a comprehensive comparison TABLE with rows for: control & decision making, diversification, research required, time commitment, minimum investment, expense ratio/costs, tax implications, and recommended allocation based on user profile. 2) Include a PERSONALIZED RECOMMENDATION section stating whether they should prefer direct stocks, mutual funds, or a hybrid approach with EXACT percentages and SPECIFIC investment vehicles. 3) Include a KNOWLEDGE ASSESSMENT section that evaluates their likely investment knowledge level based on their profile and tailors recommendations accordingly. 4) Provide a GETTING STARTED section with exact steps to begin implementing your recommendation. Use a conversational, friendly tone and tailor your communication style to match their psychological profile.)",
			query, intOrNotProvided(pers.Age), int64OrNotProvided(pers.Income), orNotProvided(pers.RiskProfile),
			ageAnalysis, incomeAnalysis, psychAnalysis)

	default:
		return fmt.Sprintf("%s (Note: PERSONALIZE your response based on: Age: %s, Income: %s, Risk Profile: %s. %s %s %s FORMAT YOUR RESPONSE appropriately using tables for comparisons, bullet points for lists, and clear paragraphs for explanations. Use a conversational, friendly tone and tailor your communication style to match their psychological profile.)",
			query, intOrNotProvided(pers.Age), int64OrNotProvided(pers.Income), orNotProvided(pers.RiskProfile),
			ageAnalysis, incomeAnalysis, psychAnalysis)
	}
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

func intOrNotProvided(n int) string {
	if n == 0 {
		return "Not provided"
	}
	return fmt.Sprintf("%d", n)
}

func int64OrNotProvided(n int64) string {
	if n == 0 {
		return "Not provided"
	}
	return fmt.Sprintf("%d", n)
}

func goalsOrNotProvided(goals []string) string {
	if len(goals) == 0 {
		return "Not provided"
	}
	return strings.Join(goals, ", ")
}

func ageAnalysisHindi(age int) string {
	switch {
	case age <= 0:
		return ""
	case age < 30:
		return fmt.Sprintf("उपयोगकर्ता युवा है (%d वर्ष), इसलिए लंबी अवधि के निवेश और जोखिम लेने की क्षमता अधिक है।", age)
	case age < 45:
		return fmt.Sprintf("उपयोगकर्ता मध्य आयु वर्ग में है (%d वर्ष), इसलिए संतुलित निवेश रणनीति उचित होगी।", age)
	case age < 60:
		return fmt.Sprintf("उपयोगकर्ता परिपक्व आयु वर्ग में है (%d वर्ष), इसलिए सुरक्षित निवेश और रिटायरमेंट प्लानिंग पर ध्यान देना चाहिए।", age)
	default:
		return fmt.Sprintf("उपयोगकर्ता वरिष्ठ आयु वर्ग में है (%d वर्ष), इसलिए आय सुरक्षा और संपत्ति संरक्षण पर ध्यान केंद्रित करना चाहिए।", age)
	}
}

func incomeAnalysisHindi(income int64) string {
	switch {
	case income <= 0:
		return ""
	case income < 500000:
		return fmt.Sprintf("उपयोगकर्ता की आय कम है (₹%d/वर्ष), इसलिए बजट प्रबंधन और आपातकालीन फंड बनाने पर ध्यान देना चाहिए।", income)
	case income < 1000000:
		return fmt.Sprintf("उपयोगकर्ता की आय मध्यम है (₹%d/वर्ष), इसलिए बचत बढ़ाने और कर बचत पर ध्यान देना चाहिए।", income)
	case income < 2000000:
		return fmt.Sprintf("उपयोगकर्ता की आय अच्छी है (₹%d/वर्ष), इसलिए विविध निवेश पोर्टफोलियो और कर योजना पर ध्यान देना चाहिए।", income)
	default:
		return fmt.Sprintf("उपयोगकर्ता की आय उच्च है (₹%d/वर्ष), इसलिए संपत्ति विविधीकरण, कर योजना और संपत्ति प्रबंधन पर ध्यान देना चाहिए।", income)
	}
}

func locationAnalysisHindi(location string) string {
	switch {
	case location == "":
		return ""
	case isMetro(location):
		return fmt.Sprintf("उपयोगकर्ता महानगर %s में रहता है, जहां जीवन यापन की लागत अधिक है, इसलिए बड़े आपातकालीन फंड और उच्च स्वास्थ्य बीमा कवरेज की आवश्यकता है।", location)
	case isTier2(location):
		return fmt.Sprintf("उपयोगकर्ता टियर 2 शहर %s में रहता है, जहां रियल एस्टेट निवेश के अच्छे अवसर हो सकते हैं।", location)
	default:
		return ""
	}
}

func occupationAnalysisHindi(occupation string) string {
	o := strings.ToLower(occupation)
	switch {
	case occupation == "":
		return ""
	case strings.Contains(o, "business") || strings.Contains(o, "entrepreneur"):
		return "उपयोगकर्ता एक व्यवसायी है, इसलिए व्यक्तिगत और व्यावसायिक वित्त को अलग रखने और व्यवसाय से अलग क्षेत्रों में निवेश करने की सलाह दें।"
	case strings.Contains(o, "government") || strings.Contains(o, "public sector"):
		return "उपयोगकर्ता सरकारी कर्मचारी है, इसलिए NPS अतिरिक्त योगदान लाभ और VPF पर विचार करने की सलाह दें।"
	case strings.Contains(o, "private") || strings.Contains(o, "corporate"):
		return "उपयोगकर्ता निजी क्षेत्र में काम करता है, इसलिए नौकरी की अस्थिरता को देखते हुए मजबूत आपातकालीन फंड बनाने की सलाह दें।"
	case strings.Contains(o, "freelance") || strings.Contains(o, "self-employed"):
		return "उपयोगकर्ता फ्रीलांसर/स्वरोजगार है, इसलिए बड़े आपातकालीन फंड और अनियमित आय के प्रबंधन के लिए ऑटो-डेबिट के माध्यम से अनुशासित निवेश की सलाह दें।"
	default:
		return ""
	}
}

func psychologicalAnalysisHindi(psych *profile.Psychological) string {
	if psych == nil {
		return ""
	}
	var b strings.Builder
	if psych.FinancialAnxiety == "high" {
		b.WriteString("उपयोगकर्ता की वित्तीय चिंता अधिक है, इसलिए आश्वासक भाषा का उपयोग करें और निवेश की सुरक्षा विशेषताओं पर जोर दें। ")
	}
	switch psych.DecisionMakingStyle {
	case "analytical":
		b.WriteString("उपयोगकर्ता विश्लेषणात्मक निर्णय लेने वाला है, इसलिए विस्तृत डेटा और तुलनात्मक विश्लेषण प्रदान करें। ")
	case "intuitive":
		b.WriteString("उपयोगकर्ता सहज निर्णय लेने वाला है, इसलिए बड़ी तस्वीर के लाभों पर ध्यान केंद्रित करें और उदाहरणों का उपयोग करें। ")
	case "consultative":
		b.WriteString("उपयोगकर्ता परामर्शदात्मक निर्णय लेने वाला है, इसलिए विभिन्न विशेषज्ञ दृष्टिकोण प्रदान करें। ")
	case "spontaneous":
		b.WriteString("उपयोगकर्ता स्वतःस्फूर्त निर्णय लेने वाला है, इसलिए स्पष्ट, कार्रवाई योग्य चरण प्रदान करें। ")
	}
	return b.String()
}
