package chat

import (
	"fmt"
	"slices"
	"strings"
)

// NormalizePhone strips non-digit characters and prepends "+".
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			sb.WriteRune(ch)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "+" + sb.String()
}

// NormalizeInput lowercases and trims menu input.
func NormalizeInput(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

var restartKeywords = []string{"start", "restart", "begin", "menu"}

// IsRestartKeyword reports whether the text asks to begin the conversation again.
func IsRestartKeyword(text string) bool {
	return slices.Contains(restartKeywords, NormalizeInput(text))
}

var numberEmoji = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

// FormatNumberedMenu creates a numbered text menu.
// Example output: "Title\n\n1️⃣ A\n2️⃣ B\n\nReply with the number:"
func FormatNumberedMenu(title string, options []string, footer string) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	for i, opt := range options {
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(numberEmoji) {
			marker = numberEmoji[i]
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, opt))
	}
	if footer != "" {
		sb.WriteString("\n")
		sb.WriteString(footer)
	}
	return sb.String()
}
