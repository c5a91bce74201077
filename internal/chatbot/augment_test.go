package chatbot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/niveshpath/backend/internal/profile"
)

func TestAugmentQuery_ProfileCompletionBranch(t *testing.T) {
	p := testSnapshot()
	p.Goals = nil
	verdict := profile.Evaluate(p)

	got := AugmentQuery("How do I complete my profile?", IntentFlags{}, verdict, p)

	if !strings.HasPrefix(got, "How do I complete my profile?") {
		t.Error("Expected augmented query to start with the raw query")
	}
	if !strings.Contains(got, "User is asking about profile completion. Their profile is 88% complete, missing: financialGoals.") {
		t.Error("Expected profile completion annotation with percentage and fields")
	}
}

func TestAugmentQuery_ProfileBranchRequiresIncomplete(t *testing.T) {
	p := testSnapshot()
	verdict := profile.Evaluate(p)
	if !verdict.Complete {
		t.Fatalf("Fixture profile should be complete, missing: %v", verdict.MissingFields)
	}

	// A complete profile skips the profile-completion branch even when the
	// query mentions the profile.
	got := AugmentQuery("Is my profile good for investing?", IntentFlags{Investment: true}, verdict, p)
	if strings.Contains(got, "profile completion") {
		t.Error("Expected complete profile to skip the profile completion branch")
	}
	if !strings.Contains(got, "This is an investment query.") {
		t.Error("Expected investment annotation")
	}
}

func TestAugmentQuery_FuturePlanBranch(t *testing.T) {
	p := testSnapshot()
	verdict := profile.Evaluate(p)

	got := AugmentQuery("मेरे भविष्य की योजना क्या होनी चाहिए?", Classify("मेरे भविष्य की योजना क्या होनी चाहिए?"), verdict, p)

	if !strings.Contains(got, "This is a future planning query.") {
		t.Error("Expected future planning annotation")
	}
	if !strings.Contains(got, "Name: Asha, Age: 29, Income: 900000, Risk Profile: medium, Financial Goals: retirement, house.") {
		t.Error("Expected profile data inline in the annotation")
	}
	if !strings.Contains(got, "उपयोगकर्ता युवा है (29 वर्ष)") {
		t.Error("Expected Hindi age analysis for a young user")
	}
	if !strings.Contains(got, "उपयोगकर्ता की आय मध्यम है (₹900000/वर्ष)") {
		t.Error("Expected Hindi income analysis for a moderate income")
	}
	if !strings.Contains(got, "उपयोगकर्ता महानगर Pune में रहता है") {
		t.Error("Expected Hindi metro location analysis")
	}
	if !strings.Contains(got, "उपयोगकर्ता निजी क्षेत्र में काम करता है") {
		t.Error("Expected Hindi private-sector occupation analysis")
	}
	if !strings.Contains(got, "उपयोगकर्ता की वित्तीय चिंता अधिक है") {
		t.Error("Expected Hindi high-anxiety analysis")
	}
	if !strings.Contains(got, "उपयोगकर्ता विश्लेषणात्मक निर्णय लेने वाला है") {
		t.Error("Expected Hindi analytical decision style analysis")
	}
}

func TestAugmentQuery_MissingFieldsRenderNotProvided(t *testing.T) {
	got := AugmentQuery("plan my future", IntentFlags{FuturePlan: true}, profile.Evaluate(nil), nil)

	if !strings.Contains(got, "Name: Not provided, Age: Not provided, Income: Not provided, Risk Profile: medium, Financial Goals: Not provided.") {
		t.Errorf("Expected Not provided placeholders with the medium risk default, got: %s", got)
	}
}

func TestAugmentQuery_SpecificComparisonBranches(t *testing.T) {
	p := testSnapshot()
	verdict := profile.Evaluate(p)

	t.Run("sip vs lump sum without investment flag", func(t *testing.T) {
		got := AugmentQuery("monthly invest or lump sum?", IntentFlags{SipVsLumpSum: true}, verdict, p)
		if !strings.Contains(got, "This is a SIP vs Lump Sum query.") {
			t.Error("Expected SIP vs lump sum annotation")
		}
	})

	t.Run("investment flag wins over sip comparison", func(t *testing.T) {
		got := AugmentQuery("sip vs lump sum", IntentFlags{Investment: true, SipVsLumpSum: true}, verdict, p)
		if !strings.Contains(got, "This is an investment query.") {
			t.Error("Expected the investment branch to take precedence")
		}
	})

	t.Run("stock vs mutual fund", func(t *testing.T) {
		got := AugmentQuery("direct equity or funds?", IntentFlags{StockVsMutualFund: true}, verdict, p)
		if !strings.Contains(got, "This is a Stocks vs Mutual Funds query.") {
			t.Error("Expected stocks vs mutual funds annotation")
		}
		if !strings.Contains(got, "KNOWLEDGE ASSESSMENT section") {
			t.Error("Expected knowledge assessment directive")
		}
	})
}

func TestAugmentQuery_GenericBranch(t *testing.T) {
	p := testSnapshot()
	got := AugmentQuery("what is inflation?", IntentFlags{}, profile.Evaluate(p), p)

	if !strings.Contains(got, "PERSONALIZE your response based on: Age: 29, Income: 900000, Risk Profile: medium.") {
		t.Error("Expected generic personalization annotation")
	}
}

func TestPostProcess(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses newline runs",
			input:    "first\n\n\n\nsecond",
			expected: "first\n\nsecond",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  hello  \n",
			expected: "hello",
		},
		{
			name:     "short text unchanged",
			input:    "A short answer. Nothing more. Really. Done. Fin.",
			expected: "A short answer. Nothing more. Really. Done. Fin.",
		},
		{
			name:     "existing ellipsis preserved",
			input:    strings.Repeat("Well... this sentence runs on and on. ", 10),
			expected: strings.TrimSpace(strings.Repeat("Well... this sentence runs on and on. ", 10)),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PostProcess(tc.input); got != tc.expected {
				t.Errorf("PostProcess(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestPostProcess_InsertsPauseInLongResponses(t *testing.T) {
	sentence := "This sentence pads the response well past the length threshold for pauses"
	input := strings.Join([]string{sentence, sentence, sentence, sentence, sentence, sentence}, ". ")

	got := PostProcess(input)

	if !strings.Contains(got, "... ") {
		t.Error("Expected a pause in a long multi-sentence response")
	}
	if strings.Count(got, "... ") != 1 {
		t.Errorf("Expected exactly one inserted pause, got %d", strings.Count(got, "... "))
	}
	// The pause lands a third of the way through the sentences.
	if !strings.Contains(got, sentence+"... . ") {
		t.Errorf("Expected pause appended to the sentence at the one-third mark, got: %s", got)
	}
}

func TestPostProcess_LengthThresholdCountsRunes(t *testing.T) {
	// Devanagari runs roughly three bytes per rune; a response under the
	// 200-rune threshold stays untouched even when its byte length is not.
	sentence := "निवेश के लिए धैर्य रखें"
	input := strings.Join([]string{sentence, sentence, sentence, sentence}, ". ")

	if utf8.RuneCountInString(input) > 200 {
		t.Fatalf("Fixture too long: %d runes", utf8.RuneCountInString(input))
	}
	if len(input) <= 200 {
		t.Fatalf("Fixture too short: %d bytes", len(input))
	}

	if got := PostProcess(input); got != input {
		t.Errorf("Expected short Hindi response unchanged, got %q", got)
	}
}
