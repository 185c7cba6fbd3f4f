package render

import (
	"regexp"
	"strings"
)

const maxOverlayLines = 100

var sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)

// OverlayLines extracts short display lines from the script body: the first
// sentence of each paragraph, capped at maxChars with a word-boundary
// ellipsis. When no paragraph yields a sentence the body is chunked at fixed
// size instead.
func OverlayLines(body string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 90
	}

	var lines []string
	for _, paragraph := range strings.Split(body, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		line := firstSentence(paragraph)
		if line == "" {
			continue
		}
		lines = append(lines, capLine(line, maxChars))
	}

	if len(lines) == 0 {
		collapsed := strings.Join(strings.Fields(body), " ")
		runes := []rune(collapsed)
		for start := 0; start < len(runes); start += maxChars {
			end := start + maxChars
			if end > len(runes) {
				end = len(runes)
			}
			chunk := strings.TrimSpace(string(runes[start:end]))
			if chunk != "" {
				lines = append(lines, chunk)
			}
		}
	}

	if len(lines) > maxOverlayLines {
		lines = lines[:maxOverlayLines]
	}
	return lines
}

func firstSentence(paragraph string) string {
	if loc := sentenceSplit.FindStringIndex(paragraph); loc != nil {
		return strings.TrimSpace(paragraph[:loc[0]+1])
	}
	return strings.TrimSpace(paragraph)
}

func capLine(line string, maxChars int) string {
	runes := []rune(line)
	if len(runes) <= maxChars {
		return line
	}
	capped := string(runes[:maxChars])
	if idx := strings.LastIndex(capped, " "); idx > 0 {
		capped = capped[:idx]
	}
	return capped + "…"
}
