package textutil

import "strings"

// SanitizeFileName makes a string safe to use as a filename. Path and drive
// separators become dashes, shell-hostile characters are dropped, and the
// result is trimmed. Sermon titles pass through here before they name
// scripts, videos, and handoff bundles.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*':
			return '-'
		case '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	return strings.TrimSpace(cleaned)
}

// SanitizeToken reduces a string to a lowercase [a-z0-9_-] token for library
// filenames. Anything outside that set becomes an underscore; a value with
// nothing usable comes back as "unknown".
func SanitizeToken(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	token := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, value)
	token = strings.Trim(token, "_-")
	if token == "" {
		return "unknown"
	}
	return token
}
