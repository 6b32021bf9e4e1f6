// Package mailer renders markdown email templates and sends them through a
// pluggable Sender.
//
// Templates are markdown files with optional YAML front matter. The body is
// a text/template executed with the send data, converted to HTML by goldmark
// and wrapped in an html/template layout that receives .Content and
// .Metadata. Front matter keys are free form; Subject is used as the
// default subject line.
//
//	---
//	Subject: Welcome, {{.Name}}
//	---
//	Hi **{{.Name}}**, your account `{{.Username}}` is ready.
//
//	[!button|Sign in]({{.BaseURL}}/login)
//
// The resend subpackage implements Sender with the Resend API. LogSender
// only logs, for environments without a provider.
package mailer
