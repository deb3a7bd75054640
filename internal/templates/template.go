// Package templates manages the email template catalog: logical template
// types, the active-template lookup the notification pipeline depends on,
// usage accounting, and the admin CRUD surface.
package templates

import (
	"time"

	"github.com/google/uuid"
)

// Type is the logical category of an email template. The notification
// pipeline looks templates up by type, never by id (except marketing
// blasts, which target an explicit template id).
type Type string

const (
	TypeOrderConfirmation  Type = "order_confirmation"
	TypeOrderShipped       Type = "order_shipped"
	TypeOrderDelivered     Type = "order_delivered"
	TypePasswordReset      Type = "password_reset"
	TypeWelcome            Type = "welcome"
	TypeMembershipWelcome  Type = "membership_welcome"
	TypeMembershipReminder Type = "membership_reminder"
	TypePaymentSuccess     Type = "payment_success"
	TypePaymentFailed      Type = "payment_failed"
	TypeLowStockAlert      Type = "low_stock_alert"
	TypeMarketing          Type = "marketing"
	TypeCustom             Type = "custom"
)

// Types lists all known template types, used for admin-side validation.
var Types = []Type{
	TypeOrderConfirmation,
	TypeOrderShipped,
	TypeOrderDelivered,
	TypePasswordReset,
	TypeWelcome,
	TypeMembershipWelcome,
	TypeMembershipReminder,
	TypePaymentSuccess,
	TypePaymentFailed,
	TypeLowStockAlert,
	TypeMarketing,
	TypeCustom,
}

// Valid reports whether t is a known template type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// EmailTemplate is one row of the template catalog. Subject and Content
// may both carry {{token}} placeholders. Variables is the declared list
// of token names the template expects; it documents the template for the
// admin UI and is not enforced at render time.
type EmailTemplate struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	Subject    string     `json:"subject"`
	Content    string     `json:"content"`
	Variables  []string   `json:"variables"`
	IsActive   bool       `json:"is_active"`
	IsSystem   bool       `json:"is_system"`
	UsageCount int64      `json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
