package emailnotify

import (
	"fmt"
	"html/template"
	"strings"
)

// bodyTemplate is the HTML shell around a notification: sender header,
// subject, and the message body rendered paragraph by paragraph.
var bodyTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="it">
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #17324d;">
  <p style="font-size: 0.9em;">{{.OrganizationName}}<br>{{.ServiceName}}</p>
  <h1 style="font-size: 1.3em;">{{.Subject}}</h1>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}
</body>
</html>
`))

type templateData struct {
	OrganizationName string
	ServiceName      string
	Subject          string
	Paragraphs       []string
}

// RenderHTML produces the HTML body for one notification. The markdown body
// is passed through a minimal paragraph renderer: blank-line separated
// blocks become <p> elements, with everything escaped. Rich markdown is
// deliberately not interpreted here.
func RenderHTML(event *Event) (string, error) {
	var out strings.Builder
	err := bodyTemplate.Execute(&out, templateData{
		OrganizationName: event.SenderMetadata.OrganizationName,
		ServiceName:      event.SenderMetadata.ServiceName,
		Subject:          event.Content.Subject,
		Paragraphs:       paragraphs(event.Content.Markdown),
	})
	if err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return out.String(), nil
}

// RenderText produces the plain-text alternative.
func RenderText(event *Event) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s - %s\n\n", event.SenderMetadata.OrganizationName, event.SenderMetadata.ServiceName)
	fmt.Fprintf(&out, "%s\n\n", event.Content.Subject)
	out.WriteString(strings.Join(paragraphs(event.Content.Markdown), "\n\n"))
	out.WriteString("\n")
	return out.String()
}

func paragraphs(markdown string) []string {
	var result []string
	for _, block := range strings.Split(markdown, "\n\n") {
		block = strings.TrimSpace(strings.ReplaceAll(block, "\n", " "))
		if block != "" {
			result = append(result, block)
		}
	}
	return result
}
