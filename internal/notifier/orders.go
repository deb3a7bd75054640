package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
	"github.com/almaluz/backend/pkg/sanitizer"
)

// OrderItem is one purchased line item.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is the event payload for order and payment notifications. It is
// a denormalized snapshot handed in by the caller, not a database row:
// the storefront API passes whatever it already has, and recipient
// resolution falls back through the fields in priority order.
type Order struct {
	Number            string      `json:"order_number"`
	UserID            uuid.UUID   `json:"user_id,omitempty"`
	UserEmail         string      `json:"user_email,omitempty"` // explicit user email
	Email             string      `json:"email,omitempty"`      // denormalized order email
	CustomerName      string      `json:"customer_name"`
	TotalAmount       float64     `json:"total_amount"`
	Items             []OrderItem `json:"items"`
	TrackingNumber    string      `json:"tracking_number,omitempty"`
	ShippedAt         *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time  `json:"delivered_at,omitempty"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery,omitempty"`
}

// recipient resolves the customer address: explicit user email first,
// then the denormalized order email, then the joined profile email.
func (s *Service) recipient(ctx context.Context, o *Order) string {
	if o.UserEmail != "" {
		return o.UserEmail
	}
	if o.Email != "" {
		return o.Email
	}
	if s.profiles != nil && o.UserID != uuid.Nil {
		return s.profiles.EmailByUserID(ctx, o.UserID)
	}
	return ""
}

// orderVars builds the shared variable set for order-related templates.
func (s *Service) orderVars(o *Order) mailer.Vars {
	return overlay(s.defaultVars(), mailer.Vars{
		"customer_name": sanitizer.StripHTML(o.CustomerName),
		"order_number":  o.Number,
		"order_total":   FormatARS(o.TotalAmount),
		"order_items":   itemsHTML(o.Items),
	})
}

// sendOrderEmail is the common path for the order lifecycle events.
func (s *Service) sendOrderEmail(ctx context.Context, t templates.Type, o *Order, extra mailer.Vars) mailer.SendResult {
	tpl := s.loadTemplate(ctx, t)
	if tpl == nil {
		return mailer.SendResult{Success: false, Error: errNoTemplate}
	}

	to := s.recipient(ctx, o)
	if to == "" {
		s.log.WarnContext(ctx, "order notification skipped, no recipient",
			slog.String("order_number", o.Number),
			slog.String("template_type", string(t)),
		)
		return mailer.SendResult{Success: false, Error: errNoRecipient}
	}

	return s.renderAndSend(ctx, tpl, []string{to}, "", overlay(s.orderVars(o), extra))
}

// OrderConfirmation notifies the customer that their order was received.
func (s *Service) OrderConfirmation(ctx context.Context, o *Order) mailer.SendResult {
	return s.sendOrderEmail(ctx, templates.TypeOrderConfirmation, o, mailer.Vars{
		"delivery_date": FormatLongDate(deliveryEstimate(o.EstimatedDelivery, o.ShippedAt)),
	})
}

// OrderShipped notifies the customer that their order was dispatched.
func (s *Service) OrderShipped(ctx context.Context, o *Order) mailer.SendResult {
	return s.sendOrderEmail(ctx, templates.TypeOrderShipped, o, mailer.Vars{
		"tracking_number": o.TrackingNumber,
		"delivery_date":   FormatLongDate(deliveryEstimate(o.EstimatedDelivery, o.ShippedAt)),
	})
}

// OrderDelivered notifies the customer that their order arrived.
func (s *Service) OrderDelivered(ctx context.Context, o *Order) mailer.SendResult {
	deliveredAt := time.Now()
	if o.DeliveredAt != nil {
		deliveredAt = *o.DeliveredAt
	}
	return s.sendOrderEmail(ctx, templates.TypeOrderDelivered, o, mailer.Vars{
		"delivery_date": FormatLongDate(deliveredAt),
	})
}

// PaymentSuccess confirms an accredited payment. A dedicated
// payment_success template is tried first; when none is configured the
// order confirmation template serves as the fallback.
func (s *Service) PaymentSuccess(ctx context.Context, o *Order) mailer.SendResult {
	tpl := s.store.ActiveByType(ctx, templates.TypePaymentSuccess)
	if tpl == nil {
		tpl = s.loadTemplate(ctx, templates.TypeOrderConfirmation)
	}
	if tpl == nil {
		return mailer.SendResult{Success: false, Error: errNoTemplate}
	}

	to := s.recipient(ctx, o)
	if to == "" {
		return mailer.SendResult{Success: false, Error: errNoRecipient}
	}

	vars := overlay(s.orderVars(o), mailer.Vars{
		"delivery_date": FormatLongDate(deliveryEstimate(o.EstimatedDelivery, o.ShippedAt)),
	})
	return s.renderAndSend(ctx, tpl, []string{to}, "", vars)
}

// PaymentFailed notifies the customer that a payment was rejected.
func (s *Service) PaymentFailed(ctx context.Context, o *Order, reason string) mailer.SendResult {
	return s.sendOrderEmail(ctx, templates.TypePaymentFailed, o, mailer.Vars{
		"failure_reason": sanitizer.StripHTML(reason),
	})
}
