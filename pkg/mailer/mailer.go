package mailer

import (
	"bytes"
	"context"
	"errors"
	texttemplate "text/template"
)

// Mailer renders templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New returns a Mailer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, config: cfg}
}

// SendParams describes a templated email.
type SendParams struct {
	Data     map[string]any
	Tags     Tags
	To       string
	Template string // e.g. "welcome.md"
	Subject  string // overrides the template's Subject
	Layout   string // overrides Config.DefaultLayout
	ReplyTo  string
}

// Send renders params.Template and sends it. The subject is taken from
// params, then the template's front matter, then Config.FallbackSubject,
// and is itself executed as a text template.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	data := make(map[string]any, len(params.Data)+1)
	data["BaseURL"] = m.config.BaseURL
	for k, v := range params.Data {
		data[k] = v
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}
	result, err := m.renderer.Render(layout, params.Template, data)
	if err != nil {
		return err
	}

	subject := params.Subject
	if subject == "" {
		subject, _ = result.Metadata["Subject"].(string)
	}
	if subject == "" {
		subject = m.config.FallbackSubject
	}
	subject, err = executeSubject(subject, data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	return m.SendRaw(ctx, &Email{
		To:      []string{params.To},
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
		ReplyTo: params.ReplyTo,
		Tags:    params.Tags,
	})
}

// SendRaw validates and sends a prepared email.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func executeSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
