package mailer

import (
	"context"
	"log/slog"
	"time"
)

// Mailer dispatches prepared emails through a Sender. A nil Sender is a
// valid configuration: every send then reports a failed SendResult
// without touching the network, which keeps local development working
// when no provider credential is present.
type Mailer struct {
	sender Sender
	log    *slog.Logger
}

// New creates a Mailer. sender may be nil for the unconfigured degrade
// mode. log may be nil; a discard logger is used in that case.
func New(sender Sender, log *slog.Logger) *Mailer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Mailer{sender: sender, log: log}
}

// Configured reports whether an actual transport is wired in.
func (m *Mailer) Configured() bool {
	return m.sender != nil
}

// Send dispatches one email. All failure modes, including a missing
// transport and provider rejections, are mapped into the returned
// SendResult; Send never panics and never returns a Go error.
func (m *Mailer) Send(ctx context.Context, email *Email) SendResult {
	if len(email.To) == 0 {
		return SendResult{Success: false, Error: ErrNoRecipient.Error()}
	}
	if email.Subject == "" {
		return SendResult{Success: false, Error: ErrNoSubject.Error()}
	}
	if email.HTML == "" {
		return SendResult{Success: false, Error: ErrNoContent.Error()}
	}
	if m.sender == nil {
		m.log.WarnContext(ctx, "email transport not configured, skipping send",
			slog.String("subject", email.Subject),
		)
		return SendResult{Success: false, Error: ErrNotConfigured.Error()}
	}

	id, err := m.sender.Send(ctx, email)
	if err != nil {
		m.log.ErrorContext(ctx, "email send failed",
			slog.String("subject", email.Subject),
			slog.String("error", err.Error()),
		)
		return SendResult{Success: false, Error: err.Error()}
	}

	return SendResult{Success: true, ID: id}
}

// SendSequence dispatches a series of independent emails with a fixed
// pause between each to stay under provider rate limits. One email
// failing does not abort the remaining sends; every email gets its own
// isolated SendResult.
func (m *Mailer) SendSequence(ctx context.Context, emails []*Email, pause time.Duration) []SendResult {
	results := make([]SendResult, 0, len(emails))
	for i, email := range emails {
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				for range emails[i:] {
					results = append(results, SendResult{Success: false, Error: ctx.Err().Error()})
				}
				return results
			case <-time.After(pause):
			}
		}
		results = append(results, m.Send(ctx, email))
	}
	return results
}
