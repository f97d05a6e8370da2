package usecase

import (
	"strings"

	"chat-relay/internal/domain"
)

const (
	promptGreeting       = "こんちゃーす"
	promptUserLabel      = "ユーザー"
	promptAssistantLabel = "アシスタント"
)

// BuildPrompt flattens history and the new message into the single prompt the
// generation endpoint continues from. Content is inserted verbatim. The result
// always ends with the open assistant label.
func BuildPrompt(history []domain.Turn, message string) string {
	var b strings.Builder
	b.WriteString(promptGreeting)
	b.WriteString("\n")
	for _, t := range history {
		writeLine(&b, roleLabel(t.Role), t.Content)
	}
	writeLine(&b, promptUserLabel, message)
	b.WriteString(promptAssistantLabel)
	b.WriteString(": ")
	return b.String()
}

// roleLabel maps "user" to the user label and every other role to the
// assistant label.
func roleLabel(role string) string {
	if role == domain.RoleUser {
		return promptUserLabel
	}
	return promptAssistantLabel
}

func writeLine(b *strings.Builder, label, content string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(content)
	b.WriteString("\n")
}

// preview returns at most n runes of s, for logging.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
