package resend

// Config holds Resend email provider configuration.
// Embed this in the app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL" envDefault:"onboarding@resend.dev"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

// Configured reports whether an API key is present. Without a key the
// application runs in degraded mode and no Sender should be constructed.
func (c Config) Configured() bool {
	return c.APIKey != ""
}
