package resend

// Config holds Resend credentials. An empty APIKey disables the sender.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL" envDefault:"no-reply@example.com"`
	SenderName  string `env:"RESEND_FROM_NAME" envDefault:"Userdesk"`
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool { return c.APIKey != "" }
