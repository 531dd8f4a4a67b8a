package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in a form input.
const maxInputLen = 64

// Character sets and rune limits for filtered inputs.
const (
	codeChars   = "0123456789"
	mobileChars = "+0123456789"
	amountChars = "0123456789."
	clockChars  = "0123456789:"

	codeLen   = 6
	mobileLen = 16
	fieldLen  = 12
)

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// editFiltered is editRune restricted to runes in allowed, capped at limit runes.
func editFiltered(text, key, allowed string, limit int) string {
	if key == "backspace" {
		return editRune(text, key)
	}
	if utf8.RuneCountInString(key) != 1 || !strings.Contains(allowed, key) {
		return text
	}
	if utf8.RuneCountInString(text) >= limit {
		return text
	}
	return text + key
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderInput renders a single-line input with a prompt, placeholder and cursor.
func renderInput(value, placeholder string, focused bool, frame int) string {
	prompt := inputPromptStyle.Render("> ")
	if !focused {
		if value == "" {
			return prompt + inputPlaceholderStyle.Render(placeholder)
		}
		return prompt + dimStyle.Render(value)
	}
	cursor := " "
	if (frame/4)%2 == 0 {
		cursor = accentStyle.Render("█")
	}
	if value == "" {
		return prompt + cursor + inputPlaceholderStyle.Render(placeholder)
	}
	return prompt + selectedStyle.Render(value) + cursor
}
