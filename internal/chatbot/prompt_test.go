package chatbot

import (
	"strings"
	"testing"

	"github.com/niveshpath/backend/internal/profile"
)

func testSnapshot() *profile.ProfileSnapshot {
	return &profile.ProfileSnapshot{
		UserID:       "user-1",
		Name:         "Asha",
		Age:          29,
		Income:       900000,
		RiskAppetite: profile.RiskMedium,
		Goals:        []string{"retirement", "house"},
		Onboarding: &profile.Onboarding{
			Demographic: &profile.Demographic{
				Location:   "Pune",
				Occupation: "private sector engineer",
			},
			Psychological: &profile.Psychological{
				RiskTolerance:       "6",
				FinancialAnxiety:    "high",
				DecisionMakingStyle: "analytical",
			},
		},
	}
}

func TestPersonalizationFrom(t *testing.T) {
	t.Run("nil snapshot defaults to medium risk", func(t *testing.T) {
		pers := PersonalizationFrom(nil)
		if pers.RiskProfile != profile.RiskMedium {
			t.Errorf("Expected medium risk default, got %q", pers.RiskProfile)
		}
		if pers.Name != "" || pers.Age != 0 || pers.Income != 0 {
			t.Error("Expected zero personalization for nil snapshot")
		}
	})

	t.Run("empty risk appetite defaults to medium", func(t *testing.T) {
		pers := PersonalizationFrom(&profile.ProfileSnapshot{Name: "Ravi"})
		if pers.RiskProfile != profile.RiskMedium {
			t.Errorf("Expected medium risk default, got %q", pers.RiskProfile)
		}
	})

	t.Run("full snapshot flattens onboarding", func(t *testing.T) {
		pers := PersonalizationFrom(testSnapshot())
		if pers.Location != "Pune" {
			t.Errorf("Expected location Pune, got %q", pers.Location)
		}
		if pers.Occupation != "private sector engineer" {
			t.Errorf("Expected occupation carried over, got %q", pers.Occupation)
		}
		if pers.Psychological == nil || pers.Psychological.DecisionMakingStyle != "analytical" {
			t.Error("Expected psychological section carried over")
		}
	})
}

func TestBuildSystemPrompt_AlwaysPresentSections(t *testing.T) {
	prompt := BuildSystemPrompt(profile.Evaluate(nil), IntentFlags{}, nil)

	if !strings.HasPrefix(prompt, "You are a financial advisor assistant for NiveshPath") {
		t.Error("Expected prompt to start with the persona section")
	}
	if !strings.Contains(prompt, "IMPORTANT FORMATTING INSTRUCTIONS") {
		t.Error("Expected closing formatting instructions")
	}
	// A nil profile still gets the medium-risk guidance.
	if !strings.Contains(prompt, "The user has a medium risk appetite.") {
		t.Error("Expected medium risk default section")
	}
}

func TestBuildSystemPrompt_IncompleteProfile(t *testing.T) {
	p := testSnapshot()
	p.Goals = nil
	verdict := profile.Evaluate(p)

	prompt := BuildSystemPrompt(verdict, IntentFlags{}, p)

	if !strings.Contains(prompt, "The user's profile is incomplete (88% complete). They are missing: financialGoals.") {
		t.Error("Expected incomplete profile section with percentage and missing fields")
	}
	if strings.Contains(prompt, "Their financial goals include") {
		t.Error("Expected no goals section when goals are missing")
	}
}

func TestBuildSystemPrompt_ProfileSections(t *testing.T) {
	p := testSnapshot()
	prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{}, p)

	for _, want := range []string{
		"The user's name is Asha.",
		"The user's age is 29. For this young user:",
		"The user's annual income is ₹900000. ",
		"The user is from Pune. For metropolitan residents:",
		"The user has a medium risk appetite. For medium risk appetite:",
		"Their financial goals include: retirement, house. ",
		"For retirement planning:",
		"For home purchase:",
		"Their occupation is private sector engineer. For private sector employees:",
		"Their risk tolerance is 6. ",
		"Their financial anxiety level is high. For high financial anxiety:",
		"Their decision making style is analytical. For analytical decision-makers:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	if strings.Contains(prompt, "DEEP SEARCH FORMATTING") {
		t.Error("Expected no deep search section without future plan or investment flags")
	}
}

func TestBuildSystemPrompt_AgeBrackets(t *testing.T) {
	testCases := []struct {
		age      int
		expected string
	}{
		{25, "For this young user:"},
		{35, "For this middle-aged user:"},
		{50, "For this mature user:"},
		{65, "For this senior user:"},
	}

	for _, tc := range testCases {
		p := testSnapshot()
		p.Age = tc.age
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{}, p)
		if !strings.Contains(prompt, tc.expected) {
			t.Errorf("Age %d: expected prompt to contain %q", tc.age, tc.expected)
		}
	}
}

func TestBuildSystemPrompt_IncomeBrackets(t *testing.T) {
	testCases := []struct {
		income   int64
		expected string
	}{
		{400000, "small SIPs starting at ₹500-1000 monthly"},
		{900000, "maximizing tax benefits through ELSS, NPS"},
		{1500000, "comprehensive tax planning"},
		{3000000, "sophisticated tax planning"},
	}

	for _, tc := range testCases {
		p := testSnapshot()
		p.Income = tc.income
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{}, p)
		if !strings.Contains(prompt, tc.expected) {
			t.Errorf("Income %d: expected prompt to contain %q", tc.income, tc.expected)
		}
	}
}

func TestBuildSystemPrompt_LocationBrackets(t *testing.T) {
	testCases := []struct {
		location string
		expected string
	}{
		{"Mumbai", "For metropolitan residents:"},
		{"Indore, Tier 2", "For tier 2 city residents:"},
		{"Shillong", "For their location:"},
	}

	for _, tc := range testCases {
		p := testSnapshot()
		p.Onboarding.Demographic.Location = tc.location
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{}, p)
		if !strings.Contains(prompt, tc.expected) {
			t.Errorf("Location %q: expected prompt to contain %q", tc.location, tc.expected)
		}
	}
}

func TestBuildSystemPrompt_DeepSearch(t *testing.T) {
	p := testSnapshot()

	t.Run("future plan query", func(t *testing.T) {
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{FuturePlan: true}, p)
		if !strings.Contains(prompt, "DEEP SEARCH FORMATTING") {
			t.Error("Expected deep search section for future plan query")
		}
		if !strings.Contains(prompt, "The user is asking about future financial plans or advice.") {
			t.Error("Expected future plan directive")
		}
		if strings.Contains(prompt, "INVESTMENT RECOMMENDATIONS") {
			t.Error("Expected no investment directives without investment flag")
		}
		if !strings.Contains(prompt, "Base your recommendations STRICTLY on their profile data") {
			t.Error("Expected strictness directive")
		}
	})

	t.Run("investment query", func(t *testing.T) {
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{Investment: true}, p)
		if !strings.Contains(prompt, "INVESTMENT RECOMMENDATIONS: The user is asking about investment options.") {
			t.Error("Expected investment directives")
		}
		if !strings.Contains(prompt, "Based on their medium risk profile:") {
			t.Error("Expected risk-specific recommendation block")
		}
		if !strings.Contains(prompt, "When recommending between SIP vs lump sum investments, consider:") {
			t.Error("Expected the generic comparison guidance without a specific comparison flag")
		}
	})

	t.Run("sip vs lump sum query", func(t *testing.T) {
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{Investment: true, SipVsLumpSum: true}, p)
		if !strings.Contains(prompt, "SPECIFIC QUERY: The user is asking about SIP vs lump sum investments.") {
			t.Error("Expected SIP vs lump sum directives")
		}
		if !strings.Contains(prompt, "EXAMPLE CALCULATION: Show a 5-year projection") {
			t.Error("Expected projection directive")
		}
	})

	t.Run("stock vs mutual fund query", func(t *testing.T) {
		prompt := BuildSystemPrompt(profile.Evaluate(p), IntentFlags{Investment: true, StockVsMutualFund: true}, p)
		if !strings.Contains(prompt, "SPECIFIC QUERY: The user is asking about direct stock investments vs mutual funds.") {
			t.Error("Expected stock vs mutual fund directives")
		}
		if !strings.Contains(prompt, "KNOWLEDGE ASSESSMENT:") {
			t.Error("Expected knowledge assessment directive")
		}
	})
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	p := testSnapshot()
	flags := IntentFlags{Investment: true, SipVsLumpSum: true}
	verdict := profile.Evaluate(p)

	first := BuildSystemPrompt(verdict, flags, p)
	for i := 0; i < 5; i++ {
		if got := BuildSystemPrompt(verdict, flags, p); got != first {
			t.Fatal("Expected byte-identical prompts for identical inputs")
		}
	}
}
