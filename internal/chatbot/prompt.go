package chatbot

import (
	"fmt"
	"strings"

	"github.com/niveshpath/backend/internal/profile"
)

// Personalization is the profile-derived view the prompt builder and query
// augmenter consume. RiskProfile falls back to "medium" when the profile
// does not carry one, so personalized guidance never runs without a risk
// bucket.
type Personalization struct {
	Name          string
	Age           int
	Income        int64
	RiskProfile   string
	Goals         []string
	Location      string
	Occupation    string
	Psychological *profile.Psychological
}

// PersonalizationFrom flattens a profile snapshot. A nil snapshot yields
// the zero personalization with the medium risk default.
func PersonalizationFrom(p *profile.ProfileSnapshot) Personalization {
	pers := Personalization{RiskProfile: profile.RiskMedium}
	if p == nil {
		return pers
	}
	pers.Name = p.Name
	pers.Age = p.Age
	pers.Income = p.Income
	if p.RiskAppetite != "" {
		pers.RiskProfile = p.RiskAppetite
	}
	pers.Goals = p.Goals
	pers.Location = p.Location()
	pers.Occupation = p.Occupation()
	pers.Psychological = p.Psychology()
	return pers
}

type promptInput struct {
	verdict profile.CompletenessVerdict
	flags   IntentFlags
	pers    Personalization
}

// A promptRule contributes one fragment of the system prompt. Rules are
// evaluated in declaration order; the output is the concatenation of every
// applicable rule's fragment, so identical inputs produce byte-identical
// prompts.
type promptRule struct {
	applies func(in promptInput) bool
	emit    func(b *strings.Builder, in promptInput)
}

func always(promptInput) bool { return true }

var promptRules = []promptRule{
	{applies: always, emit: emitPersona},
	{applies: func(in promptInput) bool { return !in.verdict.Complete }, emit: emitIncompleteProfile},
	{applies: func(in promptInput) bool { return in.pers.Name != "" }, emit: emitName},
	{applies: func(in promptInput) bool { return in.pers.Age > 0 }, emit: emitAge},
	{applies: func(in promptInput) bool { return in.pers.Income > 0 }, emit: emitIncome},
	{applies: func(in promptInput) bool { return in.pers.Location != "" }, emit: emitLocation},
	{applies: func(in promptInput) bool { return in.pers.RiskProfile != "" }, emit: emitRiskProfile},
	{applies: func(in promptInput) bool { return len(in.pers.Goals) > 0 }, emit: emitGoals},
	{applies: func(in promptInput) bool { return in.pers.Occupation != "" }, emit: emitOccupation},
	{applies: func(in promptInput) bool { return in.pers.Psychological != nil }, emit: emitPsychology},
	{applies: func(in promptInput) bool { return in.flags.FuturePlan || in.flags.Investment }, emit: emitDeepSearch},
	{applies: always, emit: emitClosing},
}

// BuildSystemPrompt assembles the system prompt for a query from the
// completeness verdict, the intent flags and the user's personalization.
func BuildSystemPrompt(verdict profile.CompletenessVerdict, flags IntentFlags, p *profile.ProfileSnapshot) string {
	in := promptInput{verdict: verdict, flags: flags, pers: PersonalizationFrom(p)}

	var b strings.Builder
	for _, rule := range promptRules {
		if rule.applies(in) {
			rule.emit(&b, in)
		}
	}
	return b.String()
}

func emitPersona(b *strings.Builder, _ promptInput) {
	b.WriteString("You are a financial advisor assistant for NiveshPath, a personal finance education platform for Indian users. FORMAT YOUR RESPONSES APPROPRIATELY: Present tabular data in markdown tables, use bullet points for lists, and use paragraphs for explanations. Always structure your response for maximum readability and clarity. ")
}

func emitIncompleteProfile(b *strings.Builder, in promptInput) {
	fmt.Fprintf(b, "The user's profile is incomplete (%d%% complete). They are missing: %s. Encourage them to complete their profile for better personalized advice. ",
		in.verdict.CompletionPercentage, strings.Join(in.verdict.MissingFields, ", "))
}

func emitName(b *strings.Builder, in promptInput) {
	fmt.Fprintf(b, "The user's name is %s. Address them by name occasionally for a personalized experience. ", in.pers.Name)
}

func emitAge(b *strings.Builder, in promptInput) {
	age := in.pers.Age
	fmt.Fprintf(b, "The user's age is %d. ", age)
	switch {
	case age < 30:
		b.WriteString("For this young user: Focus on long-term growth investments, higher equity allocation (70-80%), building emergency fund (3-6 months expenses), term insurance, and starting retirement planning early. Emphasize the power of compounding with their long investment horizon. ")
	case age < 45:
		b.WriteString("For this middle-aged user: Focus on balanced investment approach (50-60% equity), increasing retirement contributions, adequate life and health insurance, children's education planning if applicable, and possibly home loan management. ")
	case age < 60:
		b.WriteString("For this mature user: Focus on conservative investment approach (40-50% equity), accelerating retirement savings, reviewing insurance coverage, debt reduction, and beginning retirement transition planning. ")
	default:
		b.WriteString("For this senior user: Focus on income generation, capital preservation (20-30% equity maximum), healthcare planning, estate planning, and systematic withdrawal strategies. ")
	}
}

func emitIncome(b *strings.Builder, in promptInput) {
	income := in.pers.Income
	fmt.Fprintf(b, "The user's annual income is ₹%d. ", income)
	switch {
	case income < 500000:
		b.WriteString("For this income level: Focus on essential expenses management, building emergency fund first, small SIPs starting at ₹500-1000 monthly, tax-saving through Section 80C basic options, and affordable term insurance. Suggest specific budget allocation percentages (50-30-20 rule). ")
	case income < 1000000:
		b.WriteString("For this income level: Focus on increasing savings rate (aim for 20-30%), diversified mutual funds, maximizing tax benefits through ELSS, NPS, and health insurance, and building a balanced emergency fund. Suggest specific monthly SIP amounts based on their income. ")
	case income < 2000000:
		b.WriteString("For this income level: Focus on comprehensive tax planning, diversified investment portfolio with some direct equity exposure, maximizing 80C, 80D, and NPS benefits, and possibly exploring alternative investments. Recommend specific SIP amounts and lump sum allocations. ")
	default:
		b.WriteString("For this income level: Focus on sophisticated tax planning, diversified asset allocation across equity, debt, gold, and alternative investments, wealth management services consideration, and estate planning. Provide specific investment vehicle recommendations with minimum investment amounts. ")
	}
}

var metroCities = []string{"mumbai", "delhi", "bangalore", "pune", "hyderabad"}

func isMetro(location string) bool {
	return containsAny(strings.ToLower(location), metroCities)
}

func isTier2(location string) bool {
	l := strings.ToLower(location)
	return strings.Contains(l, "tier 2") || strings.Contains(l, "tier ii")
}

func emitLocation(b *strings.Builder, in promptInput) {
	fmt.Fprintf(b, "The user is from %s. ", in.pers.Location)
	switch {
	case isMetro(in.pers.Location):
		b.WriteString("For metropolitan residents: Consider higher emergency fund (6-9 months) due to higher cost of living, real estate investment trusts (REITs) for property exposure without high capital, and special emphasis on health insurance with higher coverage due to expensive healthcare. ")
	case isTier2(in.pers.Location):
		b.WriteString("For tier 2 city residents: Consider balanced emergency fund (4-6 months), potential real estate investments due to growth prospects, and mutual funds with exposure to infrastructure and development sectors. ")
	default:
		b.WriteString("For their location: Provide advice considering local cost of living, investment opportunities, and financial services accessibility. ")
	}
}

func emitRiskProfile(b *strings.Builder, in promptInput) {
	fmt.Fprintf(b, "The user has a %s risk appetite. ", in.pers.RiskProfile)
	switch in.pers.RiskProfile {
	case profile.RiskLow:
		b.WriteString("For low risk appetite: Recommend predominantly debt instruments (70-80%) like government bonds, corporate FDs, debt mutual funds, PPF, and only 20-30% in large-cap equity funds or bluechip stocks. Emphasize capital preservation over growth. ")
	case profile.RiskMedium:
		b.WriteString("For medium risk appetite: Recommend balanced allocation with 40-60% in equity (predominantly large and mid-cap funds), 30-40% in debt instruments, and 10-20% in hybrid funds or gold. Focus on steady growth with moderate volatility. ")
	case profile.RiskHigh:
		b.WriteString("For high risk appetite: Recommend aggressive allocation with 70-80% in equity (including mid, small-cap, and sectoral funds), 10-20% in debt for stability, and possibly 5-10% in high-risk high-reward options like international funds or concentrated portfolios. ")
	}
}

func emitGoals(b *strings.Builder, in promptInput) {
	fmt.Fprintf(b, "Their financial goals include: %s. ", strings.Join(in.pers.Goals, ", "))
	for _, goal := range in.pers.Goals {
		g := strings.ToLower(goal)
		switch {
		case strings.Contains(g, "retirement"):
			b.WriteString("For retirement planning: Recommend NPS allocation, equity mutual funds for long-term horizon, and debt instruments as they approach retirement age. Calculate corpus needed based on their current age, expected retirement age, and inflation. ")
		case strings.Contains(g, "education") || strings.Contains(g, "college"):
			b.WriteString("For education planning: Recommend Sukanya Samriddhi Yojana for girl child, education-focused mutual fund SIPs, or education insurance plans depending on time horizon. Calculate expected education inflation at 10-12% annually. ")
		case strings.Contains(g, "home") || strings.Contains(g, "house"):
			b.WriteString("For home purchase: Recommend liquid funds for down payment savings, optimal loan-to-value ratio based on income, and prepayment strategies to reduce interest burden. ")
		case strings.Contains(g, "wedding") || strings.Contains(g, "marriage"):
			b.WriteString("For wedding expenses: Recommend balanced mutual funds for 3+ year horizons, liquid and ultra-short funds for shorter horizons, and systematic withdrawal plans as the event approaches. ")
		case strings.Contains(g, "business") || strings.Contains(g, "startup"):
			b.WriteString("For business funding: Recommend high-liquidity instruments, balanced risk approach, and separate emergency fund specifically for business contingencies. ")
		}
	}
}

func emitOccupation(b *strings.Builder, in promptInput) {
	fmt.Fprintf(b, "Their occupation is %s. ", in.pers.Occupation)
	o := strings.ToLower(in.pers.Occupation)
	switch {
	case strings.Contains(o, "business") || strings.Contains(o, "entrepreneur"):
		b.WriteString("For business owners: Recommend separate personal and business emergency funds, business insurance, retirement plans like NPS as corporate tax may be optimized differently, and diversification away from their business industry. ")
	case strings.Contains(o, "government") || strings.Contains(o, "public sector"):
		b.WriteString("For government employees: Leverage NPS additional contribution benefits, consider VPF for additional tax-free returns, and focus on post-retirement planning to complement pension benefits. ")
	case strings.Contains(o, "private") || strings.Contains(o, "corporate"):
		b.WriteString("For private sector employees: Maximize employer-provided benefits like NPS matching, ESOP planning if applicable, and build a stronger emergency fund due to job market volatility. ")
	case strings.Contains(o, "freelance") || strings.Contains(o, "self-employed"):
		b.WriteString("For freelancers/self-employed: Recommend larger emergency fund (9-12 months), professional liability insurance if applicable, and disciplined investment through auto-debits to manage irregular income. ")
	}
}

func emitPsychology(b *strings.Builder, in promptInput) {
	psych := in.pers.Psychological
	if psych.RiskTolerance != "" {
		fmt.Fprintf(b, "Their risk tolerance is %s. ", psych.RiskTolerance)
	}
	if psych.FinancialAnxiety != "" {
		fmt.Fprintf(b, "Their financial anxiety level is %s. ", psych.FinancialAnxiety)
		if psych.FinancialAnxiety == "high" {
			b.WriteString("For high financial anxiety: Use reassuring language, emphasize safety features of recommended investments, suggest automation of savings/investments to reduce decision stress, and recommend gradual approach to new financial strategies. ")
		}
	}
	if psych.DecisionMakingStyle != "" {
		fmt.Fprintf(b, "Their decision making style is %s. ", psych.DecisionMakingStyle)
		switch psych.DecisionMakingStyle {
		case "analytical":
			b.WriteString("For analytical decision-makers: Provide detailed data, comparative analysis, historical performance metrics, and logical frameworks for financial decisions. ")
		case "intuitive":
			b.WriteString("For intuitive decision-makers: Focus on big-picture benefits, use analogies and stories, and connect recommendations to their personal values and goals. ")
		case "consultative":
			b.WriteString("For consultative decision-makers: Suggest resources for second opinions, provide multiple expert viewpoints, and recommend community or advisor-based validation options. ")
		case "spontaneous":
			b.WriteString("For spontaneous decision-makers: Provide clear, actionable steps with immediate benefits highlighted, and suggest automation strategies to harness quick decisions positively. ")
		}
	}
}

// emitDeepSearch adds the directive block for future-planning and
// investment queries: formatting rules, age/income analysis restated as
// directives, and the query-specific comparison instructions.
func emitDeepSearch(b *strings.Builder, in promptInput) {
	b.WriteString("DEEP SEARCH FORMATTING: When providing investment recommendations, present options in a comparison table with columns for investment type, risk level, expected returns, and minimum investment amount. When discussing tax implications, use bullet points for each tax rule. When explaining financial concepts, use numbered steps. When showing calculations, highlight the formula and result in bold. ")

	if age := in.pers.Age; age > 0 {
		fmt.Fprintf(b, "The user's age is %d. ", age)
		switch {
		case age < 30:
			b.WriteString("For young users, focus on long-term investments, higher risk tolerance, and building financial habits. ")
		case age < 45:
			b.WriteString("For middle-aged users, focus on balanced investment strategies, family financial planning, and increasing savings rate. ")
		case age < 60:
			b.WriteString("For mature users, focus on retirement planning, safer investments, and wealth preservation strategies. ")
		default:
			b.WriteString("For senior users, focus on income security, asset protection, and estate planning. ")
		}
	}

	if income := in.pers.Income; income > 0 {
		fmt.Fprintf(b, "The user's annual income is ₹%d. ", income)
		switch {
		case income < 500000:
			b.WriteString("For lower income levels, focus on budget management, emergency funds, and essential insurance. ")
		case income < 1000000:
			b.WriteString("For moderate income levels, focus on increasing savings rate, tax-saving investments, and lifestyle management. ")
		case income < 2000000:
			b.WriteString("For good income levels, focus on diversified investment portfolio, tax planning, and wealth accumulation. ")
		default:
			b.WriteString("For high income levels, focus on asset diversification, tax optimization, and wealth management services. ")
		}
	}

	if in.flags.Investment {
		emitInvestmentDirectives(b, in)
	} else {
		b.WriteString("The user is asking about future financial plans or advice. ")
	}

	b.WriteString("IMPORTANT: Base your recommendations STRICTLY on their profile data. Only suggest plans that align with their specific financial goals, risk appetite, income level, and demographic information. DO NOT provide generic advice. If their profile lacks critical information, suggest completing those specific profile fields first. ALWAYS analyze age and income implications in your advice. ")
}

func emitInvestmentDirectives(b *strings.Builder, in promptInput) {
	b.WriteString("INVESTMENT RECOMMENDATIONS: The user is asking about investment options. ")

	if in.pers.RiskProfile != "" {
		fmt.Fprintf(b, "Based on their %s risk profile: ", in.pers.RiskProfile)
		switch in.pers.RiskProfile {
		case profile.RiskLow:
			b.WriteString("RECOMMEND: Fixed deposits, government bonds, debt mutual funds, PPF, and low-risk index funds. AVOID: Direct equity investments, high-risk sector funds, and cryptocurrency. ")
		case profile.RiskMedium:
			b.WriteString("RECOMMEND: Balanced mutual funds, blue-chip stocks, SIPs in diversified equity funds, corporate bonds, and REITs. AVOID: High-risk small-cap stocks and concentrated sector bets. ")
		case profile.RiskHigh:
			b.WriteString("RECOMMEND: Equity-heavy portfolio, mid and small-cap funds, international equity, sectoral funds, and some alternative investments. AVOID: Excessive concentration in fixed income. ")
		}
	}

	switch {
	case in.flags.SipVsLumpSum:
		b.WriteString("SPECIFIC QUERY: The user is asking about SIP vs lump sum investments. PROVIDE DETAILED COMPARISON: ")
		b.WriteString("FORMAT AS TABLE: Create a detailed comparison table with rows for: 1) Definition, 2) Best suited for, 3) Market condition advantage, 4) Risk management, 5) Return potential, 6) Psychological benefits, 7) Flexibility, 8) Recommended allocation based on user profile. ")
		b.WriteString("PERSONALIZED RECOMMENDATION: Based on the user's age, income, and risk profile, provide a specific recommendation on whether they should prefer SIP, lump sum, or a combination approach. If recommending a combination, specify exact percentages. ")
		b.WriteString("EXAMPLE CALCULATION: Show a 5-year projection comparing returns from both approaches using realistic market scenarios and the user's potential investment amount (estimated from income). ")
	case in.flags.StockVsMutualFund:
		b.WriteString("SPECIFIC QUERY: The user is asking about direct stock investments vs mutual funds. PROVIDE DETAILED COMPARISON: ")
		b.WriteString("FORMAT AS TABLE: Create a detailed comparison table with rows for: 1) Control & decision making, 2) Diversification, 3) Research required, 4) Time commitment, 5) Minimum investment, 6) Expense ratio/costs, 7) Tax implications, 8) Recommended allocation based on user profile. ")
		b.WriteString("PERSONALIZED RECOMMENDATION: Based on the user's age, income, risk profile, and psychological profile (if available), provide a specific recommendation on whether they should prefer direct stocks, mutual funds, or a hybrid approach. If recommending a hybrid approach, specify exact percentages and suggest specific investment vehicles. ")
		b.WriteString("KNOWLEDGE ASSESSMENT: Based on the user's profile, assess their likely investment knowledge level and tailor your recommendation accordingly. For beginners, emphasize learning resources alongside safer options. ")
	default:
		b.WriteString("IMPORTANT: When recommending between SIP vs lump sum investments, consider: 1) For beginners or those with regular income, recommend SIPs to build discipline and benefit from rupee cost averaging. 2) For those with lump sum amounts, recommend partial SIP and partial lump sum approach based on market conditions. 3) Always explain the pros and cons of each approach with examples. ")
		b.WriteString("When recommending between direct stocks vs mutual funds: 1) For users with limited investment knowledge or time, recommend mutual funds with appropriate risk categories. 2) For financially savvy users with time to research, suggest a core portfolio of mutual funds supplemented with direct stocks. 3) Always explain the tax implications, expense ratios, and time commitment required for each approach. ")
	}

	b.WriteString("ALWAYS provide specific investment vehicle recommendations (not just asset classes) with approximate expected returns based on historical data. Include minimum investment amounts, lock-in periods, and tax implications for each recommendation. ")
}

func emitClosing(b *strings.Builder, _ promptInput) {
	b.WriteString("Provide helpful, accurate information about personal finance topics, especially in the Indian context. IMPORTANT FORMATTING INSTRUCTIONS: 1) When presenting numerical data, statistics, or comparisons, ALWAYS use markdown tables. 2) When listing options, steps, or multiple points, ALWAYS use bullet points. 3) For explanations and general advice, use well-structured paragraphs with clear headings. 4) For important financial metrics or key figures, highlight them in bold. 5) When explaining complex concepts, break them down into numbered steps. Use a conversational, friendly tone and respond in a natural way that feels human-like. Include some personality in your responses, use analogies where appropriate, and vary your sentence structure. When responding in Hindi, use natural conversational Hindi rather than formal language. Respond as if you are having a real conversation with the user.")
}
