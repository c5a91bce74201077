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

// Package fallback supplies the localized canned responses served when the
// model backend fails: per-error-type messages in Hindi and English, plus
// general financial information paragraphs keyed off the query.
package fallback

import "strings"

// ErrorType categorizes a failed model call.
type ErrorType string

const (
	ErrorRateLimit       ErrorType = "RATE_LIMIT"
	ErrorAuth            ErrorType = "AUTH_ERROR"
	ErrorTimeout         ErrorType = "TIMEOUT"
	ErrorServer          ErrorType = "SERVER_ERROR"
	ErrorInvalidResponse ErrorType = "INVALID_RESPONSE"
	ErrorUnknown         ErrorType = "UNKNOWN"
)

// Supported languages for fallback text.
const (
	LangHindi   = "hindi"
	LangEnglish = "english"
)

type localized struct {
	hindi   string
	english string
}

func (l localized) in(language string) string {
	if language == LangEnglish {
		return l.english
	}
	return l.hindi
}

var errorMessages = map[ErrorType]localized{
	ErrorRateLimit: {
		hindi:   "अत्यधिक अनुरोधों के कारण सेवा अस्थायी रूप से अनुपलब्ध है। कृपया कुछ मिनट बाद पुनः प्रयास करें।",
		english: "Service temporarily unavailable due to high request volume. Please try again in a few minutes.",
	},
	ErrorAuth: {
		hindi:   "प्रमाणीकरण त्रुटि। कृपया सिस्टम व्यवस्थापक से संपर्क करें।",
		english: "Authentication error. Please contact the system administrator.",
	},
	ErrorTimeout: {
		hindi:   "सर्वर प्रतिक्रिया में देरी हो रही है। कृपया अपना प्रश्न संक्षिप्त करें या कुछ देर बाद पुनः प्रयास करें।",
		english: "Server response delayed. Please shorten your query or try again later.",
	},
	ErrorServer: {
		hindi:   "AI सेवा में तकनीकी समस्या है। हमारी टीम इस पर काम कर रही है। कृपया कुछ देर बाद पुनः प्रयास करें।",
		english: "Technical issue with the AI service. Our team is working on it. Please try again later.",
	},
	ErrorInvalidResponse: {
		hindi:   "अमान्य प्रतिक्रिया प्राप्त हुई। कृपया कुछ देर बाद पुनः प्रयास करें।",
		english: "Invalid response received. Please try again later.",
	},
	ErrorUnknown: {
		hindi:   "मुझे खेद है, मैं अभी आपके प्रश्न का उत्तर नहीं दे पा रहा हूँ। कृपया कुछ देर बाद पुनः प्रयास करें।",
		english: "I apologize, I cannot answer your question right now. Please try again later.",
	},
}

// Message returns the canned text for an error type in the given language.
// Unknown error types fall back to the UNKNOWN message.
func Message(errType ErrorType, language string) string {
	if msg, ok := errorMessages[errType]; ok {
		return msg.in(language)
	}
	return errorMessages[ErrorUnknown].in(language)
}

// Response is the full fallback payload for a failed model call.
type Response struct {
	Text        string    `json:"text"`
	Fallback    bool      `json:"fallback"`
	ErrorType   ErrorType `json:"errorType"`
	RetryAfter  int       `json:"retryAfter,omitempty"`
	Suggestion  string    `json:"suggestion,omitempty"`
	GeneralInfo string    `json:"generalInfo,omitempty"`
}

// Build assembles the fallback response for a failed call: the localized
// message, a retry hint for rate limiting, a shorten-query suggestion for
// timeouts, and general financial info when the query looks financial.
func Build(errType ErrorType, query, language string) Response {
	resp := Response{
		Text:      Message(errType, language),
		Fallback:  true,
		ErrorType: errType,
	}

	switch errType {
	case ErrorRateLimit:
		resp.RetryAfter = 60
	case ErrorTimeout:
		if language == LangHindi {
			resp.Suggestion = "अपने प्रश्न को छोटा करके पुनः प्रयास करें"
		} else {
			resp.Suggestion = "Try again with a shorter query"
		}
	}

	if IsFinancialQuery(query) {
		resp.GeneralInfo = GeneralInfo(query, language)
	}
	return resp
}

var financialKeywords = []string{
	"invest", "stock", "mutual fund", "sip", "tax", "budget", "saving", "finance",
	"insurance", "loan", "interest", "emi", "return", "portfolio", "equity", "debt",
	"निवेश", "शेयर", "म्यूचुअल फंड", "एसआईपी", "कर", "बजट", "बचत", "वित्त",
	"बीमा", "ऋण", "ब्याज", "ईएमआई", "रिटर्न", "पोर्टफोलियो", "इक्विटी", "डेट",
}

// IsFinancialQuery reports whether the query contains any financial
// keyword, English or Hindi.
func IsFinancialQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range financialKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

var (
	sipInfo = localized{
		hindi:   "SIP (सिस्टमैटिक इन्वेस्टमेंट प्लान) एक निवेश विधि है जिसमें आप नियमित अंतराल पर एक निश्चित राशि का निवेश करते हैं। यह लंबी अवधि में संपत्ति निर्माण के लिए एक प्रभावी तरीका है।",
		english: "SIP (Systematic Investment Plan) is an investment method where you invest a fixed amount at regular intervals. It is an effective way to build wealth over the long term.",
	}
	mutualFundInfo = localized{
		hindi:   "म्यूचुअल फंड एक निवेश वाहन है जो कई निवेशकों से धन एकत्र करता है और विभिन्न प्रतिभूतियों में निवेश करता है। ये फंड पेशेवर रूप से प्रबंधित होते हैं और विविधीकरण प्रदान करते हैं।",
		english: "A mutual fund is an investment vehicle that pools money from many investors and invests in various securities. These funds are professionally managed and provide diversification.",
	}
	taxInfo = localized{
		hindi:   "भारत में, आयकर विभिन्न स्लैब दरों पर लगाया जाता है। कर बचत के लिए, आप धारा 80C, 80D, और NPS जैसे विकल्पों का उपयोग कर सकते हैं।",
		english: "In India, income tax is levied at various slab rates. For tax savings, you can use options like Section 80C, 80D, and NPS.",
	}
	generalInfo = localized{
		hindi:   "वित्तीय योजना के लिए, आपातकालीन फंड बनाना, बीमा लेना, निवेश करना और कर योजना बनाना महत्वपूर्ण है। अधिक विशिष्ट सलाह के लिए, कृपया बाद में पुनः प्रयास करें।",
		english: "For financial planning, it is important to create an emergency fund, get insurance, invest, and plan for taxes. For more specific advice, please try again later.",
	}
)

// GeneralInfo returns a canned paragraph matching the query topic: SIP,
// mutual funds, tax, or a general financial-planning note.
func GeneralInfo(query, language string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "sip") || strings.Contains(q, "एसआईपी"):
		return sipInfo.in(language)
	case strings.Contains(q, "mutual fund") || strings.Contains(q, "म्यूचुअल फंड"):
		return mutualFundInfo.in(language)
	case strings.Contains(q, "tax") || strings.Contains(q, "कर"):
		return taxInfo.in(language)
	default:
		return generalInfo.in(language)
	}
}
