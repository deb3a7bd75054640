package mailer_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almaluz/backend/pkg/mailer"
)

// fakeSender records sent emails and fails on demand.
type fakeSender struct {
	mu     sync.Mutex
	sent   []*mailer.Email
	err    error
	nextID int
}

func (f *fakeSender) Send(_ context.Context, email *mailer.Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, email)
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func validEmail() *mailer.Email {
	return &mailer.Email{
		To:      []string{"maria@example.com"},
		Subject: "Hola",
		HTML:    "<p>Hola</p>",
	}
}

func TestSendUnconfigured(t *testing.T) {
	t.Parallel()

	m := mailer.New(nil, nil)
	assert.False(t, m.Configured())

	res := m.Send(context.Background(), validEmail())
	assert.False(t, res.Success)
	assert.Equal(t, mailer.ErrNotConfigured.Error(), res.Error)
	assert.Empty(t, res.ID)
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	m := mailer.New(sender, nil)

	tests := []struct {
		name    string
		mutate  func(*mailer.Email)
		wantErr error
	}{
		{"missing recipient", func(e *mailer.Email) { e.To = nil }, mailer.ErrNoRecipient},
		{"missing subject", func(e *mailer.Email) { e.Subject = "" }, mailer.ErrNoSubject},
		{"missing content", func(e *mailer.Email) { e.HTML = "" }, mailer.ErrNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			email := validEmail()
			tt.mutate(email)
			res := m.Send(context.Background(), email)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantErr.Error(), res.Error)
		})
	}
	assert.Empty(t, sender.sent)
}

func TestSendSuccess(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	m := mailer.New(sender, nil)

	res := m.Send(context.Background(), validEmail())
	require.True(t, res.Success)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.Error)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"maria@example.com"}, sender.sent[0].To)
}

func TestSendTransportError(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("rate limited")}
	m := mailer.New(sender, nil)

	res := m.Send(context.Background(), validEmail())
	assert.False(t, res.Success)
	assert.Equal(t, "rate limited", res.Error)
}

func TestSendSequenceIsolatesFailures(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	m := mailer.New(sender, nil)

	emails := []*mailer.Email{
		validEmail(),
		{To: []string{"x@example.com"}, Subject: "", HTML: "<p>a</p>"}, // invalid
		validEmail(),
	}

	results := m.SendSequence(context.Background(), emails, 0)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Len(t, sender.sent, 2)
}

func TestSendSequenceCancelled(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	m := mailer.New(sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emails := []*mailer.Email{validEmail(), validEmail(), validEmail()}
	results := m.SendSequence(ctx, emails, time.Second)
	require.Len(t, results, 3)
	// First email goes out before any pause; the rest report cancellation.
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.Equal(t, context.Canceled.Error(), results[1].Error)
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "María <maria@example.com>", mailer.Recipient("María", "maria@example.com"))
	assert.Equal(t, "maria@example.com", mailer.Recipient("", "maria@example.com"))
}
