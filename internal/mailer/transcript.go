package mailer

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"ask-mark/internal/domain"
)

// Transcript is a full conversation prepared for email.
type Transcript struct {
	Name           string
	Email          string
	ConversationID string
	Messages       []domain.Message
	SentAt         time.Time
}

type transcriptLine struct {
	Speaker string
	Content string
	IsUser  bool
}

type transcriptView struct {
	Greeting       string
	Email          string
	ConversationID string
	Date           string
	Lines          []transcriptLine
}

var textTranscript = texttemplate.Must(texttemplate.New("transcript.txt").Parse(
	`{{.Greeting}}

Here is your conversation with Ask Mark ({{.Date}}).
{{range .Lines}}
{{.Speaker}}:
{{.Content}}
{{end}}
Your move.
`))

var htmlTranscript = htmltemplate.Must(htmltemplate.New("transcript.html").Parse(
	`<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; max-width: 640px; margin: 0 auto; color: #1a1a1a;">
<h2 style="color: #c2410c;">Ask Mark</h2>
<p>{{.Greeting}}</p>
<p>Here is your conversation with Ask Mark ({{.Date}}).</p>
{{range .Lines}}<div style="margin: 16px 0; padding: 12px; border-radius: 8px; background: {{if .IsUser}}#fff7ed{{else}}#f5f5f4{{end}};">
<strong>{{.Speaker}}</strong>
<p style="white-space: pre-wrap; margin: 8px 0 0;">{{.Content}}</p>
</div>
{{end}}<p><strong>Your move.</strong></p>
</body>
</html>
`))

var notifyText = texttemplate.Must(texttemplate.New("notify.txt").Parse(
	`A transcript was sent to {{.Email}}.
Conversation: {{.ConversationID}}
Messages: {{len .Lines}}
`))

// Render returns the plain text and HTML forms of t.
func (t Transcript) Render() (text, html string, err error) {
	view := t.view()

	var tb strings.Builder
	if err := textTranscript.Execute(&tb, view); err != nil {
		return "", "", err
	}
	var hb strings.Builder
	if err := htmlTranscript.Execute(&hb, view); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}

// RenderNotification returns the plain text body of the internal notice.
func (t Transcript) RenderNotification() (string, error) {
	var b strings.Builder
	if err := notifyText.Execute(&b, t.view()); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t Transcript) view() transcriptView {
	greeting := "Hi there,"
	if name := strings.TrimSpace(t.Name); name != "" {
		greeting = "Hi " + name + ","
	}
	sentAt := t.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	conversationID := t.ConversationID
	if conversationID == "" {
		conversationID = "(none)"
	}
	lines := make([]transcriptLine, 0, len(t.Messages))
	for _, m := range t.Messages {
		speaker := "Ask Mark"
		if m.IsUser() {
			speaker = "You"
		}
		lines = append(lines, transcriptLine{Speaker: speaker, Content: m.Content, IsUser: m.IsUser()})
	}
	return transcriptView{
		Greeting:       greeting,
		Email:          t.Email,
		ConversationID: conversationID,
		Date:           sentAt.Format("January 2, 2006"),
		Lines:          lines,
	}
}
