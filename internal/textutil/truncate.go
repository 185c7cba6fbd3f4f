package textutil

import "strings"

// TruncateWords shortens text to at most limit runes, cutting on a word
// boundary when one exists past the halfway point, and appends an ellipsis.
// Text already within the limit is returned unchanged.
func TruncateWords(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len([]rune(text)) <= limit {
		return text
	}
	runes := []rune(text)
	cut := limit
	for i := limit; i > limit/2; i-- {
		if runes[i-1] == ' ' {
			cut = i - 1
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ,;") + "…"
}

// FirstSentence returns the first sentence of the text, delimited by the
// earliest period, exclamation mark, or question mark. Text with no sentence
// terminator comes back whole.
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	end := len(text)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			end = i + 1
			break
		}
	}
	return strings.TrimSpace(text[:end])
}
