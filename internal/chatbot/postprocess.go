package chatbot

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var multiNewline = regexp.MustCompile(`\n\n+`)

// PostProcess normalizes model output: collapses newline runs, trims
// surrounding whitespace, and inserts one rhetorical pause into longer
// responses that do not already contain an ellipsis.
func PostProcess(text string) string {
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	// Length is measured in runes so Devanagari responses use the same
	// threshold as Latin ones.
	if utf8.RuneCountInString(text) > 200 && !strings.Contains(text, "...") {
		sentences := strings.Split(text, ". ")
		if len(sentences) > 3 {
			pauseIndex := len(sentences) / 3
			sentences[pauseIndex] += "... "
			text = strings.Join(sentences, ". ")
		}
	}
	return text
}
