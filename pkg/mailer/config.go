package mailer

// Config holds mailer settings, parsed with caarlos0/env.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
	// BaseURL is exposed to templates as .BaseURL for absolute links.
	BaseURL string `env:"APP_URL" envDefault:"http://localhost:3000"`
}
