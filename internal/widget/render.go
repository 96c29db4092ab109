package widget

import (
	"regexp"
	"strconv"
	"strings"

	"ask-mark/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

// Starters are offered while the conversation is empty.
var Starters = []string{
	"I'm stuck in a job I hate. What should I do?",
	"How do I have a hard conversation I've been avoiding?",
	"My teenager won't listen to me. Help.",
	"I feel like I've wasted years of my life. Is it too late?",
	"How do I know if my relationship is worth fighting for?",
}

var (
	boldPattern = regexp.MustCompile(`\*\*[^*]+\*\*`)

	boldStyle = lipgloss.NewStyle().Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	markStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FormatMessage renders **bold** segments of an assistant reply in bold.
func FormatMessage(text string) string {
	return boldPattern.ReplaceAllStringFunc(text, func(m string) string {
		return boldStyle.Render(m[2 : len(m)-2])
	})
}

func Header() string {
	return headerStyle.Render("Ask Mark") + " " + dimStyle.Render("Advice from Brave & Boundless")
}

// Welcome lists the starter questions, numbered from 1.
func Welcome() string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("What's on your mind?"))
	b.WriteString("\n")
	for i, q := range Starters {
		b.WriteString(dimStyle.Render(strconv.Itoa(i+1) + ". "))
		b.WriteString(q)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMessage formats one turn with its speaker label.
func RenderMessage(m domain.Message) string {
	if m.IsUser() {
		return userStyle.Render("You: ") + m.Content
	}
	return markStyle.Render("Mark: ") + FormatMessage(m.Content)
}

func RenderError(text string) string {
	return errorStyle.Render(text)
}

func RenderHint(text string) string {
	return dimStyle.Render(text)
}
