package mailer

import "fmt"

// Email represents a fully-prepared message ready for delivery.
type Email struct {
	Subject string   // Email subject (already rendered)
	HTML    string   // HTML body content
	Text    string   // Plain text alternative
	ReplyTo string   // Optional reply-to address
	To      []string // Recipients (at least one required)
}

// SendResult is the outcome of one transport call. It is a value, never
// an error: transport failures are converted into a failed result so that
// notification plumbing cannot crash the business operation that
// triggered it.
type SendResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`    // provider message id
	Error   string `json:"error,omitempty"` // human-readable failure reason
}

// Failed builds a failed SendResult from a formatted message.
func Failed(format string, args ...any) SendResult {
	return SendResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
