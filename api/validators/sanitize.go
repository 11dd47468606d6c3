package validators

import "strings"

// SanitizeString trims whitespace and truncates to maxLen runes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}

// SanitizeOptional trims the value and maps blank strings to nil.
func SanitizeOptional(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	clean := SanitizeString(*input, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}
