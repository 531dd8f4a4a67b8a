package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/playsafe/rgportal/internal/notice"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses whitespace so server text fits on a row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// renderNotice renders an error notice, one line per message.
func renderNotice(n notice.Notice) string {
	if n.IsZero() {
		return ""
	}
	var b strings.Builder
	for _, line := range n.Lines() {
		b.WriteString(" " + errorStyle.Render(line) + "\n")
	}
	if n.Retryable {
		b.WriteString(" " + dimStyle.Render("press r to retry") + "\n")
	}
	return b.String()
}
