package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

var digestHTML = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
<h2>{{len .Todos}} task(s) due {{.Date}}</h2>
<ul>
{{- range .Todos}}
<li>
<strong>{{.Task}}</strong> <em>({{.Priority.Label}} priority)</em>
{{- if .Description}}<br>{{.Description}}{{end}}
{{- if .CategoryName}}<br><span style="color: {{.CategoryColor}};">{{.CategoryName}}</span>{{end}}
</li>
{{- end}}
</ul>
</body>
</html>
`))

// Subject summarizes a digest by count and date.
func Subject(count int, day time.Time) string {
	return fmt.Sprintf("Todo reminder: %d task(s) due %s", count, day.Format(domain.DateLayout))
}

// Digest builds the one message covering every todo in the cohort, in cohort order.
func Digest(address string, day time.Time, todos []domain.Todo) (domain.Message, error) {
	date := day.Format(domain.DateLayout)

	var text strings.Builder
	fmt.Fprintf(&text, "You have %d task(s) due today (%s):\n\n", len(todos), date)
	for i, t := range todos {
		fmt.Fprintf(&text, "%d. %s [%s priority]\n", i+1, t.Task, t.Priority.Label())
		if t.Description != "" {
			fmt.Fprintf(&text, "   %s\n", t.Description)
		}
		if t.CategoryName != "" {
			fmt.Fprintf(&text, "   Category: %s\n", t.CategoryName)
		}
	}

	var html bytes.Buffer
	if err := digestHTML.Execute(&html, struct {
		Date  string
		Todos []domain.Todo
	}{Date: date, Todos: todos}); err != nil {
		return domain.Message{}, fmt.Errorf("rendering digest: %w", err)
	}

	return domain.Message{
		From:     address,
		To:       []string{address},
		Subject:  Subject(len(todos), day),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

// TestMessage is sent by the manual "send test" action.
func TestMessage(address string, now time.Time) domain.Message {
	return domain.Message{
		From:     address,
		To:       []string{address},
		Subject:  "Todo reminder: test email",
		TextBody: fmt.Sprintf("Email notifications are configured correctly.\nSent at %s.\n", now.Format(time.RFC1123)),
		Date:     now,
	}
}
