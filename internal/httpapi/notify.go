package httpapi

import (
	"context"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/almaluz/backend/internal/catalog"
	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/pkg/mailer"
)

// respondSend always answers 200: failed sends (missing template, missing
// recipient, transport error) are reported in the body so event producers
// never retry them.
func (h *handlers) respondSend(w http.ResponseWriter, res mailer.SendResult) {
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) notifyOrderConfirmation(w http.ResponseWriter, r *http.Request) {
	h.orderEvent(w, r, h.Notifier.OrderConfirmation)
}

func (h *handlers) notifyOrderShipped(w http.ResponseWriter, r *http.Request) {
	h.orderEvent(w, r, h.Notifier.OrderShipped)
}

func (h *handlers) notifyOrderDelivered(w http.ResponseWriter, r *http.Request) {
	h.orderEvent(w, r, h.Notifier.OrderDelivered)
}

func (h *handlers) notifyPaymentSuccess(w http.ResponseWriter, r *http.Request) {
	h.orderEvent(w, r, h.Notifier.PaymentSuccess)
}

func (h *handlers) orderEvent(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, o *notifier.Order) mailer.SendResult) {
	var o notifier.Order
	if err := decode(r, &o); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if o.Number == "" {
		respondError(w, http.StatusBadRequest, "order_number is required")
		return
	}
	h.respondSend(w, send(r.Context(), &o))
}

func (h *handlers) notifyPaymentFailed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		notifier.Order
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Number == "" {
		respondError(w, http.StatusBadRequest, "order_number is required")
		return
	}
	h.respondSend(w, h.Notifier.PaymentFailed(r.Context(), &req.Order, req.Reason))
}

func (h *handlers) notifyWelcome(w http.ResponseWriter, r *http.Request) {
	var c notifier.Customer
	if err := decode(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondSend(w, h.Notifier.Welcome(r.Context(), c))
}

func (h *handlers) notifyPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		notifier.Customer
		ResetURL string `json:"reset_url"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResetURL == "" {
		respondError(w, http.StatusBadRequest, "reset_url is required")
		return
	}
	h.respondSend(w, h.Notifier.PasswordReset(r.Context(), req.Customer, req.ResetURL))
}

type membershipRequest struct {
	notifier.Customer
	PlanName  string    `json:"plan_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *handlers) notifyMembershipWelcome(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondSend(w, h.Notifier.MembershipWelcome(r.Context(), req.Customer, req.PlanName, req.ExpiresAt))
}

func (h *handlers) notifyMembershipReminder(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondSend(w, h.Notifier.MembershipReminder(r.Context(), req.Customer, req.PlanName, req.ExpiresAt))
}

func (h *handlers) notifyLowStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product    catalog.Product `json:"product"`
		Threshold  int             `json:"threshold"`
		Recipients []string        `json:"recipients"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Product.Name == "" {
		respondError(w, http.StatusBadRequest, "product is required")
		return
	}
	respondJSON(w, http.StatusOK, h.Notifier.LowStockAlert(r.Context(), req.Product, req.Threshold, req.Recipients))
}

func (h *handlers) notifyMarketing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID uuid.UUID `json:"template_id"`
		Recipients []string  `json:"recipients"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TemplateID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "template_id is required")
		return
	}
	if len(req.Recipients) == 0 {
		respondError(w, http.StatusBadRequest, "recipients are required")
		return
	}
	respondJSON(w, http.StatusOK, h.Notifier.MarketingBlast(r.Context(), req.TemplateID, req.Recipients))
}

func (h *handlers) contactForm(w http.ResponseWriter, r *http.Request) {
	var sub notifier.ContactSubmission
	if err := decode(r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		respondError(w, http.StatusBadRequest, "name, email and message are required")
		return
	}
	if _, err := mail.ParseAddress(sub.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	h.respondSend(w, h.Notifier.ContactForm(r.Context(), sub))
}
