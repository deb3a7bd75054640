package mailer

import "errors"

var (
	// ErrNotConfigured indicates no transport credential is configured.
	ErrNotConfigured = errors.New("mailer: transport not configured")

	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("mailer: email must have HTML content")
)
