package mailer

import "context"

// Sender is the minimal interface email providers must implement.
// It accepts a fully-prepared Email and returns the provider message id.
type Sender interface {
	// Send delivers an email message. The Email must have To, Subject,
	// and HTML already set. Returns the provider message id on success.
	Send(ctx context.Context, email *Email) (string, error)
}
