package notifier

import (
	"context"
	"time"

	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
	"github.com/almaluz/backend/pkg/sanitizer"
)

// Customer identifies the recipient of an account-related email.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// sendCustomerEmail is the common path for account lifecycle events.
func (s *Service) sendCustomerEmail(ctx context.Context, t templates.Type, c Customer, extra mailer.Vars) mailer.SendResult {
	tpl := s.loadTemplate(ctx, t)
	if tpl == nil {
		return mailer.SendResult{Success: false, Error: errNoTemplate}
	}
	if c.Email == "" {
		return mailer.SendResult{Success: false, Error: errNoRecipient}
	}

	vars := overlay(s.defaultVars(), mailer.Vars{
		"customer_name": sanitizer.StripHTML(c.Name),
	})
	return s.renderAndSend(ctx, tpl, []string{c.Email}, "", overlay(vars, extra))
}

// Welcome greets a newly registered customer.
func (s *Service) Welcome(ctx context.Context, c Customer) mailer.SendResult {
	return s.sendCustomerEmail(ctx, templates.TypeWelcome, c, nil)
}

// PasswordReset sends the reset link.
func (s *Service) PasswordReset(ctx context.Context, c Customer, resetURL string) mailer.SendResult {
	return s.sendCustomerEmail(ctx, templates.TypePasswordReset, c, mailer.Vars{
		"reset_url": resetURL,
	})
}

// MembershipWelcome confirms an activated membership.
func (s *Service) MembershipWelcome(ctx context.Context, c Customer, planName string, expiresAt time.Time) mailer.SendResult {
	return s.sendCustomerEmail(ctx, templates.TypeMembershipWelcome, c, mailer.Vars{
		"plan_name":  planName,
		"expires_at": FormatLongDate(expiresAt),
	})
}

// MembershipReminder warns about an upcoming membership expiry. Invoked
// by the scheduler with service-role template access, since no user
// session exists on that path.
func (s *Service) MembershipReminder(ctx context.Context, c Customer, planName string, expiresAt time.Time) mailer.SendResult {
	return s.sendCustomerEmail(ctx, templates.TypeMembershipReminder, c, mailer.Vars{
		"plan_name":  planName,
		"expires_at": FormatLongDate(expiresAt),
	})
}
