package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almaluz/backend/internal/httpapi"
	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
)

type memorySender struct {
	mu   sync.Mutex
	sent []*mailer.Email
}

func (m *memorySender) Send(_ context.Context, email *mailer.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

type memoryStore struct {
	active map[templates.Type]*templates.EmailTemplate
}

func (m *memoryStore) ActiveByType(_ context.Context, t templates.Type) *templates.EmailTemplate {
	return m.active[t]
}

func (m *memoryStore) ByID(_ context.Context, _ uuid.UUID) (*templates.EmailTemplate, error) {
	return nil, templates.ErrNotFound
}

func (m *memoryStore) IncrementUsage(context.Context, uuid.UUID) {}

func testRouter(t *testing.T, sender *memorySender, store *memoryStore) http.Handler {
	t.Helper()
	if store == nil {
		store = &memoryStore{active: map[templates.Type]*templates.EmailTemplate{}}
	}
	log := slog.New(slog.DiscardHandler)
	notify := notifier.New(notifier.Config{
		CompanyName:  "Alma Luz Cosmética",
		ContactEmail: "hola@almaluz.com.ar",
		SenderEmail:  "pedidos@almaluz.com.ar",
	}, mailer.New(sender, log), store, nil, log)

	return httpapi.NewRouter(httpapi.Deps{
		Log:        log,
		AdminToken: "secret-token",
		Notifier:   notify,
	})
}

func TestContactEndpoint(t *testing.T) {
	t.Parallel()

	sender := &memorySender{}
	router := testRouter(t, sender, nil)

	body := `{"name":"Juan","email":"juan@example.com","subject":"Envíos","message":"¿Llegan a Salta?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res mailer.SendResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "juan@example.com", sender.sent[0].ReplyTo)
	assert.Equal(t, []string{"hola@almaluz.com.ar"}, sender.sent[0].To)
}

func TestContactEndpointValidation(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &memorySender{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"name":"Juan","email":"juan@example.com","subject":"x"}`},
		{"invalid email", `{"name":"Juan","email":"not-an-email","subject":"x","message":"y"}`},
		{"malformed json", `{`},
		{"unknown field", `{"name":"Juan","email":"juan@example.com","message":"y","extra":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAdminAuthRejectsBadTokens(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &memorySender{}, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong token", "Bearer nope"},
		{"wrong scheme", "Basic secret-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/notifications/welcome", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestNotifyWelcomeWithToken(t *testing.T) {
	t.Parallel()

	sender := &memorySender{}
	store := &memoryStore{active: map[templates.Type]*templates.EmailTemplate{
		templates.TypeWelcome: {
			ID:      uuid.New(),
			Type:    templates.TypeWelcome,
			Subject: "Bienvenida {{customer_name}}",
			Content: "<p>Hola {{customer_name}}</p>",
		},
	}}
	router := testRouter(t, sender, store)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/welcome",
		strings.NewReader(`{"email":"maria@example.com","name":"María"}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res mailer.SendResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Bienvenida María", sender.sent[0].Subject)
}

func TestNotifyMissingTemplateReportsSoftFailure(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &memorySender{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/order-confirmation",
		strings.NewReader(`{"order_number":"ORD-1","user_email":"maria@example.com"}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res mailer.SendResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "No active template found", res.Error)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &memorySender{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "incoming-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "incoming-id", rec.Header().Get("X-Request-ID"))
}
