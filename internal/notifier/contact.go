package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/almaluz/backend/pkg/mailer"
	"github.com/almaluz/backend/pkg/sanitizer"
)

// sandboxDomains are provider test domains that can only deliver to the
// provider account's own inbox. While the outbound sender still lives on
// one of these, contact-form mail is routed to the fallback address
// instead of the real business inbox.
var sandboxDomains = []string{"resend.dev"}

// ContactSubmission is a storefront contact-form payload.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactForm relays a contact-form submission to the business inbox.
// This path deliberately bypasses the template catalog: the layout is
// fixed, and reply-to is set to the submitter so staff can answer
// directly from their mail client.
func (s *Service) ContactForm(ctx context.Context, sub ContactSubmission) mailer.SendResult {
	if sub.Email == "" {
		return mailer.SendResult{Success: false, Error: errNoRecipient}
	}

	to := s.cfg.ContactEmail
	if s.senderIsSandbox() && s.cfg.ContactFallbackEmail != "" {
		to = s.cfg.ContactFallbackEmail
		s.log.InfoContext(ctx, "contact relay using sandbox fallback address",
			slog.String("to", to),
		)
	}

	name := sanitizer.StripHTML(sub.Name)
	subject := sanitizer.StripHTML(sub.Subject)
	message := sanitizer.StripHTML(sub.Message)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Nueva consulta desde la web</h2>
  <p><strong>Nombre:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <p><strong>Asunto:</strong> %s</p>
  <p><strong>Mensaje:</strong></p>
  <p>%s</p>
</div>`, name, sub.Email, subject, strings.ReplaceAll(message, "\n", "<br>"))

	text := fmt.Sprintf("Nueva consulta desde la web\n\nNombre: %s\nEmail: %s\nAsunto: %s\n\n%s",
		name, sub.Email, subject, message)

	return s.mail.Send(ctx, &mailer.Email{
		To:      []string{to},
		Subject: fmt.Sprintf("Consulta: %s", subject),
		HTML:    html,
		Text:    text,
		ReplyTo: sub.Email,
	})
}

// senderIsSandbox reports whether the configured from-address lives on a
// provider sandbox domain.
func (s *Service) senderIsSandbox() bool {
	_, domain, ok := strings.Cut(s.cfg.SenderEmail, "@")
	if !ok {
		return false
	}
	for _, sandbox := range sandboxDomains {
		if strings.EqualFold(domain, sandbox) {
			return true
		}
	}
	return false
}
