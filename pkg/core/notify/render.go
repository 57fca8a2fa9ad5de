package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
)

// Message is a rendered notification
type Message struct {
	Subject string
	Body    string
}

// Renderer turns a job into a deliverable message
type Renderer interface {
	Render(job dispatch.Job) (Message, error)
}

const defaultSubject = `{{.EventName}}: your volunteer assignments`

const defaultBody = `Hi {{.Job.RecipientName}},

You have been assigned to the following {{if eq (len .Job.Payload) 1}}shift{{else}}shifts{{end}} at {{.EventName}}:
{{range .Job.Payload}}
- {{.Task}}{{if .Location}} at {{.Location}}{{end}}, {{.Schedule}}{{if .Description}} ({{.Description}}){{end}}
{{- end}}
{{if .Job.PortalReference}}
You can view and manage your assignments here: {{.Job.PortalReference}}
{{end}}
Thank you for volunteering!
`

// TemplateRenderer renders messages with text/template
type TemplateRenderer struct {
	eventName string
	subject   *template.Template
	body      *template.Template
}

type templateData struct {
	EventName string
	Job       dispatch.Job
}

// NewTemplateRenderer creates a renderer using the built-in templates
func NewTemplateRenderer(eventName string) (*TemplateRenderer, error) {
	return NewTemplateRendererWith(eventName, defaultSubject, defaultBody)
}

// NewTemplateRendererWith creates a renderer from custom subject and body templates
func NewTemplateRendererWith(eventName, subject, body string) (*TemplateRenderer, error) {
	subjectTmpl, err := template.New("subject").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject template: %w", err)
	}
	bodyTmpl, err := template.New("body").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body template: %w", err)
	}

	return &TemplateRenderer{
		eventName: eventName,
		subject:   subjectTmpl,
		body:      bodyTmpl,
	}, nil
}

// Render implements Renderer
func (r *TemplateRenderer) Render(job dispatch.Job) (Message, error) {
	data := templateData{EventName: r.eventName, Job: job}

	var subject, body strings.Builder
	if err := r.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("failed to render subject: %w", err)
	}
	if err := r.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to render body: %w", err)
	}

	return Message{
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}
