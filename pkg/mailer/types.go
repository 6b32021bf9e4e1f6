package mailer

import "fmt"

// Tags label an email for the provider. Values are optional.
type Tags map[string]string

// Recipient formats an RFC 5322 address. Without a name it returns email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a rendered message ready for a Sender.
type Email struct {
	Tags    Tags
	Subject string
	HTML    string
	Text    string
	From    string // empty uses the sender's default
	ReplyTo string
	To      []string
}

func (e *Email) validate() error {
	switch {
	case len(e.To) == 0:
		return ErrNoRecipient
	case e.Subject == "":
		return ErrNoSubject
	case e.HTML == "":
		return ErrNoContent
	}
	return nil
}
