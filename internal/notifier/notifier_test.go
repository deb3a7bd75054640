package notifier_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almaluz/backend/internal/catalog"
	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
)

// fakeSender records every delivered email and fails for blocked
// addresses.
type fakeSender struct {
	mu      sync.Mutex
	sent    []*mailer.Email
	blocked map[string]error
	nextID  int
}

func (f *fakeSender) Send(_ context.Context, email *mailer.Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, to := range email.To {
		if err, ok := f.blocked[to]; ok {
			return "", err
		}
	}
	f.sent = append(f.sent, email)
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) lastSent() *mailer.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// fakeStore serves templates from memory and records usage increments.
type fakeStore struct {
	mu     sync.Mutex
	active map[templates.Type]*templates.EmailTemplate
	byID   map[uuid.UUID]*templates.EmailTemplate
	usage  map[uuid.UUID]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		active: make(map[templates.Type]*templates.EmailTemplate),
		byID:   make(map[uuid.UUID]*templates.EmailTemplate),
		usage:  make(map[uuid.UUID]int),
	}
}

func (f *fakeStore) add(t templates.Type, subject, content string) *templates.EmailTemplate {
	tpl := &templates.EmailTemplate{
		ID:       uuid.New(),
		Name:     string(t),
		Type:     t,
		Subject:  subject,
		Content:  content,
		IsActive: true,
	}
	f.active[t] = tpl
	f.byID[tpl.ID] = tpl
	return tpl
}

func (f *fakeStore) ActiveByType(_ context.Context, t templates.Type) *templates.EmailTemplate {
	return f.active[t]
}

func (f *fakeStore) ByID(_ context.Context, id uuid.UUID) (*templates.EmailTemplate, error) {
	tpl, ok := f.byID[id]
	if !ok {
		return nil, templates.ErrNotFound
	}
	return tpl, nil
}

func (f *fakeStore) IncrementUsage(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage[id]++
}

func (f *fakeStore) usageOf(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usage[id]
}

// fakeProfiles resolves user ids to emails from a fixed map.
type fakeProfiles map[uuid.UUID]string

func (f fakeProfiles) EmailByUserID(_ context.Context, userID uuid.UUID) string {
	return f[userID]
}

func testConfig() notifier.Config {
	return notifier.Config{
		CompanyName:  "Alma Luz Cosmética",
		SupportEmail: "soporte@almaluz.com.ar",
		ContactEmail: "hola@almaluz.com.ar",
		WebsiteURL:   "https://almaluz.com.ar",
		SenderEmail:  "pedidos@almaluz.com.ar",
	}
}

func newService(cfg notifier.Config, sender *fakeSender, store *fakeStore, profiles notifier.ProfileEmails) *notifier.Service {
	return notifier.New(cfg, mailer.New(sender, nil), store, profiles, nil)
}

func TestOrderConfirmation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	tpl := store.add(templates.TypeOrderConfirmation,
		"Confirmación de pedido {{order_number}}",
		"<p>Hola {{customer_name}}, tu pedido {{order_number}} por {{order_total}} fue recibido.</p>{{order_items}}")

	svc := newService(testConfig(), sender, store, nil)

	res := svc.OrderConfirmation(context.Background(), &notifier.Order{
		Number:       "ORD-1001",
		UserEmail:    "maria@example.com",
		CustomerName: "María",
		TotalAmount:  15000,
		Items: []notifier.OrderItem{
			{Name: "Crema facial", Quantity: 2, Price: 7500},
		},
	})

	require.True(t, res.Success)
	require.Equal(t, 1, sender.sentCount())

	email := sender.lastSent()
	assert.Equal(t, []string{"maria@example.com"}, email.To)
	assert.Equal(t, "Confirmación de pedido ORD-1001", email.Subject)
	assert.Contains(t, email.HTML, "Hola María, tu pedido ORD-1001 por $15.000 fue recibido.")
	assert.Contains(t, email.HTML, "2 x Crema facial ($7.500 c/u)")
	assert.NotEmpty(t, email.Text)
	assert.Equal(t, 1, store.usageOf(tpl.ID))
}

func TestOrderConfirmationNoTemplate(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	svc := newService(testConfig(), sender, newFakeStore(), nil)

	res := svc.OrderConfirmation(context.Background(), &notifier.Order{
		Number:    "ORD-1",
		UserEmail: "maria@example.com",
	})

	assert.False(t, res.Success)
	assert.Equal(t, "No active template found", res.Error)
	assert.Zero(t, sender.sentCount())
}

func TestOrderConfirmationNoRecipient(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	store.add(templates.TypeOrderConfirmation, "s", "<p>b</p>")
	svc := newService(testConfig(), sender, store, nil)

	res := svc.OrderConfirmation(context.Background(), &notifier.Order{Number: "ORD-1"})

	assert.False(t, res.Success)
	assert.Equal(t, "no customer email found", res.Error)
	assert.Zero(t, sender.sentCount())
}

func TestRecipientFallbackChain(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	profiles := fakeProfiles{userID: "profile@example.com"}

	tests := []struct {
		name     string
		order    notifier.Order
		expected string
	}{
		{
			name: "explicit user email wins",
			order: notifier.Order{
				Number: "O1", UserEmail: "explicit@example.com",
				Email: "order@example.com", UserID: userID,
			},
			expected: "explicit@example.com",
		},
		{
			name: "order email next",
			order: notifier.Order{
				Number: "O2", Email: "order@example.com", UserID: userID,
			},
			expected: "order@example.com",
		},
		{
			name:     "profile lookup last",
			order:    notifier.Order{Number: "O3", UserID: userID},
			expected: "profile@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := &fakeSender{}
			store := newFakeStore()
			store.add(templates.TypeOrderConfirmation, "s", "<p>b</p>")
			svc := newService(testConfig(), sender, store, profiles)

			res := svc.OrderConfirmation(context.Background(), &tt.order)
			require.True(t, res.Success)
			assert.Equal(t, []string{tt.expected}, sender.lastSent().To)
		})
	}
}

func TestPaymentSuccessFallsBackToOrderConfirmation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	tpl := store.add(templates.TypeOrderConfirmation,
		"Pedido {{order_number}}", "<p>Gracias {{customer_name}}</p>")
	svc := newService(testConfig(), sender, store, nil)

	res := svc.PaymentSuccess(context.Background(), &notifier.Order{
		Number:       "ORD-2",
		UserEmail:    "maria@example.com",
		CustomerName: "María",
	})

	require.True(t, res.Success)
	assert.Equal(t, "Pedido ORD-2", sender.lastSent().Subject)
	assert.Equal(t, 1, store.usageOf(tpl.ID))
}

func TestPaymentSuccessPrefersDedicatedTemplate(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	store.add(templates.TypeOrderConfirmation, "fallback", "<p>f</p>")
	store.add(templates.TypePaymentSuccess, "Pago acreditado {{order_number}}", "<p>p</p>")
	svc := newService(testConfig(), sender, store, nil)

	res := svc.PaymentSuccess(context.Background(), &notifier.Order{
		Number:    "ORD-3",
		UserEmail: "maria@example.com",
	})

	require.True(t, res.Success)
	assert.Equal(t, "Pago acreditado ORD-3", sender.lastSent().Subject)
}

func TestPaymentFailedStripsReasonMarkup(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	store.add(templates.TypePaymentFailed, "Pago rechazado", "<p>{{failure_reason}}</p>")
	svc := newService(testConfig(), sender, store, nil)

	res := svc.PaymentFailed(context.Background(), &notifier.Order{
		Number:    "ORD-4",
		UserEmail: "maria@example.com",
	}, `Fondos insuficientes<script>alert(1)</script>`)

	require.True(t, res.Success)
	assert.Contains(t, sender.lastSent().HTML, "Fondos insuficientes")
	assert.NotContains(t, sender.lastSent().HTML, "<script>")
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	store.add(templates.TypePasswordReset,
		"Restablecé tu contraseña", `<p>Hola {{customer_name}}</p><a href="{{reset_url}}">Restablecer</a>`)
	svc := newService(testConfig(), sender, store, nil)

	res := svc.PasswordReset(context.Background(), notifier.Customer{
		Email: "maria@example.com",
		Name:  "María",
	}, "https://almaluz.com.ar/reset?token=abc")

	require.True(t, res.Success)
	assert.Contains(t, sender.lastSent().HTML, `href="https://almaluz.com.ar/reset?token=abc"`)
}

func TestLowStockAlertAggregatesPartialFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{blocked: map[string]error{
		"a1@almaluz.com.ar": errors.New("mailbox full"),
		"a2@almaluz.com.ar": errors.New("mailbox full"),
		"a3@almaluz.com.ar": errors.New("mailbox full"),
	}}
	store := newFakeStore()
	tpl := store.add(templates.TypeLowStockAlert,
		"Stock bajo: {{product_name}}", "<p>Quedan {{stock}} de {{product_name}} ({{product_sku}})</p>")

	cfg := testConfig()
	cfg.AdminEmails = []string{"a1@almaluz.com.ar", "a2@almaluz.com.ar", "a3@almaluz.com.ar", "ok@almaluz.com.ar"}
	svc := newService(cfg, sender, store, nil)

	res := svc.LowStockAlert(context.Background(), catalog.Product{
		Name: "Serum Vitamina C", SKU: "SVC-30", Stock: 2,
	}, 5, nil)

	// One delivery is enough for an overall success; every failure is
	// still individually reported.
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 3, res.Failed)
	assert.Len(t, res.Errors, 3)
	assert.Len(t, res.Results, 4)
	assert.Equal(t, 1, store.usageOf(tpl.ID))
	assert.Contains(t, sender.lastSent().Subject, "Serum Vitamina C")
}

func TestLowStockAlertExplicitRecipientsOverrideAdmins(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	store.add(templates.TypeLowStockAlert, "s", "<p>b</p>")

	cfg := testConfig()
	cfg.AdminEmails = []string{"admin@almaluz.com.ar"}
	svc := newService(cfg, sender, store, nil)

	res := svc.LowStockAlert(context.Background(), catalog.Product{Name: "x", SKU: "X-1"}, 5,
		[]string{"alt@almaluz.com.ar"})

	require.True(t, res.Success)
	assert.Equal(t, 1, sender.sentCount())
	assert.Equal(t, []string{"alt@almaluz.com.ar"}, sender.lastSent().To)
}

func TestLowStockAlertNoRecipients(t *testing.T) {
	t.Parallel()

	svc := newService(testConfig(), &fakeSender{}, newFakeStore(), nil)
	res := svc.LowStockAlert(context.Background(), catalog.Product{Name: "x"}, 5, nil)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"no customer email found"}, res.Errors)
}

func TestMarketingBlastBatches(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	tpl := store.add(templates.TypeMarketing, "Novedades de {{company_name}}", "<p>Hola</p>")
	svc := newService(testConfig(), sender, store, nil)

	recipients := make([]string, 25)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("c%d@example.com", i)
	}

	start := time.Now()
	res := svc.MarketingBlast(context.Background(), tpl.ID, recipients)
	elapsed := time.Since(start)

	assert.True(t, res.Success)
	assert.Equal(t, 25, res.Sent)
	assert.Zero(t, res.Failed)
	assert.Len(t, res.Results, 25)
	assert.Equal(t, 25, sender.sentCount())
	// 25 recipients means three batches, so two inter-batch pauses.
	assert.GreaterOrEqual(t, elapsed, 2*time.Second)
	assert.Equal(t, 1, store.usageOf(tpl.ID))
	assert.Equal(t, "Novedades de Alma Luz Cosmética", sender.lastSent().Subject)
}

func TestMarketingBlastUnknownTemplate(t *testing.T) {
	t.Parallel()

	svc := newService(testConfig(), &fakeSender{}, newFakeStore(), nil)
	res := svc.MarketingBlast(context.Background(), uuid.New(), []string{"a@example.com"})

	assert.False(t, res.Success)
	assert.Equal(t, []string{"No active template found"}, res.Errors)
}

func TestContactFormRelay(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	svc := newService(testConfig(), sender, newFakeStore(), nil)

	res := svc.ContactForm(context.Background(), notifier.ContactSubmission{
		Name:    "Juan <b>Pérez</b>",
		Email:   "juan@example.com",
		Subject: "Consulta de envío",
		Message: "Hola,\n¿hacen envíos a Córdoba?",
	})

	require.True(t, res.Success)
	email := sender.lastSent()
	assert.Equal(t, []string{"hola@almaluz.com.ar"}, email.To)
	assert.Equal(t, "juan@example.com", email.ReplyTo)
	assert.Equal(t, "Consulta: Consulta de envío", email.Subject)
	assert.Contains(t, email.HTML, "Juan Pérez")
	assert.NotContains(t, email.HTML, "<b>")
	assert.Contains(t, email.HTML, "¿hacen envíos a Córdoba?")
}

func TestContactFormSandboxRouting(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	cfg := testConfig()
	cfg.SenderEmail = "onboarding@resend.dev"
	cfg.ContactFallbackEmail = "owner@example.com"
	svc := newService(cfg, sender, newFakeStore(), nil)

	res := svc.ContactForm(context.Background(), notifier.ContactSubmission{
		Name: "Juan", Email: "juan@example.com", Subject: "Hola", Message: "Mensaje",
	})

	require.True(t, res.Success)
	assert.Equal(t, []string{"owner@example.com"}, sender.lastSent().To)
	assert.Equal(t, "juan@example.com", sender.lastSent().ReplyTo)
}

func TestTestSendSkipsUsageTracking(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	store := newFakeStore()
	tpl := store.add(templates.TypeWelcome, "Bienvenida a {{company_name}}", "<p>Hola</p>")
	svc := newService(testConfig(), sender, store, nil)

	res := svc.TestSend(context.Background(), tpl, "preview@example.com", mailer.Vars{})

	require.True(t, res.Success)
	assert.Equal(t, "Bienvenida a Alma Luz Cosmética", sender.lastSent().Subject)
	assert.Zero(t, store.usageOf(tpl.ID))
}
