// Package notifier is the notification orchestrator: one method per
// business event. Every method follows the same linear shape: load the
// template for the event's type, resolve the recipient, build the
// variable map, render subject/HTML/text, send, and record template
// usage on success.
//
// All failures here are soft. A missing template, an unresolvable
// recipient, or a transport rejection comes back as a failed
// SendResult, logged at warning level; nothing in this package returns
// a Go error to its caller or can roll back the business operation that
// triggered the email.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
)

const (
	// Soft-failure reasons surfaced in SendResult.Error.
	errNoTemplate  = "No active template found"
	errNoRecipient = "no customer email found"

	// Marketing blast throughput limits.
	blastBatchSize = 10
	blastPause     = time.Second

	// Delivery estimate offset when no explicit date is present.
	deliveryOffset = 7 * 24 * time.Hour
)

// TemplateStore is the template access the orchestrator needs. The
// concrete implementation is templates.Repository on the service-role
// pool, since most sends are system-triggered.
type TemplateStore interface {
	ActiveByType(ctx context.Context, t templates.Type) *templates.EmailTemplate
	ByID(ctx context.Context, id uuid.UUID) (*templates.EmailTemplate, error)
	IncrementUsage(ctx context.Context, id uuid.UUID)
}

// ProfileEmails resolves a customer's profile email, the final fallback
// in recipient resolution.
type ProfileEmails interface {
	EmailByUserID(ctx context.Context, userID uuid.UUID) string
}

// Config holds the company identity defaults available to every
// template, plus contact-relay routing.
type Config struct {
	CompanyName  string `env:"COMPANY_NAME" envDefault:"Alma Luz Cosmética"`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"soporte@almaluz.com.ar"`
	ContactEmail string `env:"CONTACT_EMAIL" envDefault:"hola@almaluz.com.ar"`
	WebsiteURL   string `env:"WEBSITE_URL" envDefault:"https://almaluz.com.ar"`

	// AdminEmails receive low-stock alerts unless overridden in system
	// settings.
	AdminEmails []string `env:"ADMIN_ALERT_EMAILS" envSeparator:","`

	// SenderEmail is the outbound from-address; contact-form relay uses
	// its domain to detect sandbox mode.
	SenderEmail string `env:"RESEND_FROM_EMAIL" envDefault:"onboarding@resend.dev"`

	// ContactFallbackEmail receives contact-form mail while the sender
	// domain is still a provider sandbox, since sandbox senders can only
	// deliver to the account owner.
	ContactFallbackEmail string `env:"CONTACT_FALLBACK_EMAIL"`
}

// Service orchestrates notification emails.
type Service struct {
	cfg      Config
	mail     *mailer.Mailer
	store    TemplateStore
	profiles ProfileEmails
	log      *slog.Logger
}

// New creates the orchestrator. profiles may be nil when profile lookups
// are unavailable; recipient resolution then stops at the payload fields.
func New(cfg Config, mail *mailer.Mailer, store TemplateStore, profiles ProfileEmails, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{cfg: cfg, mail: mail, store: store, profiles: profiles, log: log}
}

// defaultVars is the fixed variable set every template can rely on.
func (s *Service) defaultVars() mailer.Vars {
	return mailer.Vars{
		"company_name":  s.cfg.CompanyName,
		"support_email": s.cfg.SupportEmail,
		"contact_email": s.cfg.ContactEmail,
		"website_url":   s.cfg.WebsiteURL,
	}
}

// loadTemplate fetches the active template for a type and logs the soft
// miss, returning nil when the feature is not configured.
func (s *Service) loadTemplate(ctx context.Context, t templates.Type) *templates.EmailTemplate {
	tpl := s.store.ActiveByType(ctx, t)
	if tpl == nil {
		s.log.WarnContext(ctx, "no active email template",
			slog.String("template_type", string(t)),
		)
	}
	return tpl
}

// renderAndSend renders subject and body with the variable map, derives
// the plain-text fallback, dispatches, and records usage on success.
func (s *Service) renderAndSend(ctx context.Context, tpl *templates.EmailTemplate, to []string, replyTo string, vars mailer.Vars) mailer.SendResult {
	subject := mailer.Render(tpl.Subject, vars)
	html := mailer.Render(tpl.Content, vars)

	result := s.mail.Send(ctx, &mailer.Email{
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    mailer.HTMLToText(html),
		ReplyTo: replyTo,
	})
	if result.Success {
		// Usage tracking failures are swallowed inside the store; a
		// tracking hiccup never turns a delivered email into a failure.
		s.store.IncrementUsage(ctx, tpl.ID)
	}
	return result
}

// TestSend renders a specific template with caller-supplied variables and
// delivers it to a single address. Drafts can be exercised this way before
// activation, so usage tracking is intentionally skipped.
func (s *Service) TestSend(ctx context.Context, tpl *templates.EmailTemplate, to string, vars mailer.Vars) mailer.SendResult {
	merged := overlay(s.defaultVars(), vars)
	subject := mailer.Render(tpl.Subject, merged)
	html := mailer.Render(tpl.Content, merged)

	return s.mail.Send(ctx, &mailer.Email{
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		Text:    mailer.HTMLToText(html),
	})
}

// overlay merges event-specific variables over the defaults.
func overlay(base mailer.Vars, extra mailer.Vars) mailer.Vars {
	for k, v := range extra {
		base[k] = v
	}
	return base
}
