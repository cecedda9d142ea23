// File: internal/services/chat/context.go
package chat

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// TruncateText cuts a UTF-8 string to maxLen runes without splitting a character.
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

// SanitizeForPrompt removes characters that confuse prompt processing and
// collapses runs of blank lines.
func SanitizeForPrompt(input string) string {
	sanitized := strings.ReplaceAll(input, "\x00", "")
	sanitized = strings.ReplaceAll(sanitized, "\r\n", "\n")
	sanitized = strings.ReplaceAll(sanitized, "\r", "\n")

	for strings.Contains(sanitized, "\n\n\n") {
		sanitized = strings.ReplaceAll(sanitized, "\n\n\n", "\n\n")
	}
	return sanitized
}

// CleanWhitespace collapses all whitespace runs to single spaces.
func CleanWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// CleanFilename turns a knowledge-base path into a display title.
func CleanFilename(filename string) string {
	if filename == "" {
		return ""
	}
	cleaned := filepath.Base(filename)
	cleaned = strings.TrimSuffix(cleaned, filepath.Ext(cleaned))
	cleaned = strings.ReplaceAll(cleaned, "_", " ")
	return strings.TrimSpace(cleaned)
}
