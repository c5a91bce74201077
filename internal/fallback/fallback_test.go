// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fallback

import (
	"strings"
	"testing"
)

func TestMessage(t *testing.T) {
	testCases := []struct {
		name     string
		errType  ErrorType
		language string
		contains string
	}{
		{
			name:     "rate limit english",
			errType:  ErrorRateLimit,
			language: LangEnglish,
			contains: "Service temporarily unavailable due to high request volume",
		},
		{
			name:     "rate limit hindi",
			errType:  ErrorRateLimit,
			language: LangHindi,
			contains: "अत्यधिक अनुरोधों के कारण",
		},
		{
			name:     "auth english",
			errType:  ErrorAuth,
			language: LangEnglish,
			contains: "Authentication error",
		},
		{
			name:     "timeout hindi",
			errType:  ErrorTimeout,
			language: LangHindi,
			contains: "सर्वर प्रतिक्रिया में देरी",
		},
		{
			name:     "server error english",
			errType:  ErrorServer,
			language: LangEnglish,
			contains: "Technical issue with the AI service",
		},
		{
			name:     "unknown error type falls back",
			errType:  ErrorType("SOMETHING_ELSE"),
			language: LangEnglish,
			contains: "I apologize, I cannot answer your question right now",
		},
		{
			name:     "unrecognized language defaults to hindi",
			errType:  ErrorUnknown,
			language: "french",
			contains: "मुझे खेद है",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Message(tc.errType, tc.language)
			if !strings.Contains(got, tc.contains) {
				t.Errorf("Message(%s, %s) = %q, expected to contain %q", tc.errType, tc.language, got, tc.contains)
			}
		})
	}
}

func TestBuild_RateLimitSetsRetryAfter(t *testing.T) {
	resp := Build(ErrorRateLimit, "hello", LangEnglish)

	if !resp.Fallback {
		t.Error("Expected fallback flag set")
	}
	if resp.ErrorType != ErrorRateLimit {
		t.Errorf("Expected RATE_LIMIT error type, got %s", resp.ErrorType)
	}
	if resp.RetryAfter != 60 {
		t.Errorf("Expected retry after 60 seconds, got %d", resp.RetryAfter)
	}
	if resp.Suggestion != "" {
		t.Errorf("Expected no suggestion for rate limit, got %q", resp.Suggestion)
	}
}

func TestBuild_TimeoutSetsSuggestion(t *testing.T) {
	english := Build(ErrorTimeout, "hello", LangEnglish)
	if english.Suggestion != "Try again with a shorter query" {
		t.Errorf("Expected english shorten suggestion, got %q", english.Suggestion)
	}

	hindi := Build(ErrorTimeout, "hello", LangHindi)
	if hindi.Suggestion != "अपने प्रश्न को छोटा करके पुनः प्रयास करें" {
		t.Errorf("Expected hindi shorten suggestion, got %q", hindi.Suggestion)
	}
}

func TestBuild_FinancialQueryAddsGeneralInfo(t *testing.T) {
	resp := Build(ErrorServer, "how do I start a SIP?", LangEnglish)
	if !strings.Contains(resp.GeneralInfo, "SIP (Systematic Investment Plan)") {
		t.Errorf("Expected SIP general info, got %q", resp.GeneralInfo)
	}

	nonFinancial := Build(ErrorServer, "hello there", LangEnglish)
	if nonFinancial.GeneralInfo != "" {
		t.Errorf("Expected no general info for non-financial query, got %q", nonFinancial.GeneralInfo)
	}
}

func TestIsFinancialQuery(t *testing.T) {
	testCases := []struct {
		query    string
		expected bool
	}{
		{"how to invest money", true},
		{"what is a mutual fund", true},
		{"EMI calculation help", true},
		{"निवेश कैसे करें", true},
		{"बीमा क्या है", true},
		{"what is the weather", false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := IsFinancialQuery(tc.query); got != tc.expected {
			t.Errorf("IsFinancialQuery(%q) = %v, want %v", tc.query, got, tc.expected)
		}
	}
}

func TestGeneralInfo_TopicSelection(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		language string
		contains string
	}{
		{
			name:     "sip topic",
			query:    "sip kaise shuru kare",
			language: LangEnglish,
			contains: "SIP (Systematic Investment Plan)",
		},
		{
			name:     "mutual fund topic",
			query:    "best mutual fund",
			language: LangEnglish,
			contains: "pools money from many investors",
		},
		{
			name:     "tax topic",
			query:    "tax saving options",
			language: LangEnglish,
			contains: "Section 80C, 80D, and NPS",
		},
		{
			name:     "tax topic hindi keyword",
			query:    "कर बचत",
			language: LangHindi,
			contains: "धारा 80C",
		},
		{
			name:     "general fallback",
			query:    "retirement planning",
			language: LangEnglish,
			contains: "emergency fund",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := GeneralInfo(tc.query, tc.language)
			if !strings.Contains(got, tc.contains) {
				t.Errorf("GeneralInfo(%q, %s) = %q, expected to contain %q", tc.query, tc.language, got, tc.contains)
			}
		})
	}
}
