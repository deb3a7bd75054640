package httpapi_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almaluz/backend/internal/httpapi"
	"github.com/almaluz/backend/pkg/logger"
)

// The extractor must plug straight into the logger factories.
var _ logger.ContextExtractor = httpapi.RequestIDExtractor()

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := httpapi.RequestIDExtractor()

	var reqCtx context.Context
	h := httpapi.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCtx = r.Context()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	attr, ok := extract(reqCtx)
	require.True(t, ok)
	assert.True(t, attr.Equal(slog.String("request_id", "req-42")))

	attr, ok = extract(context.Background())
	assert.False(t, ok)
	assert.True(t, attr.Equal(slog.Attr{}))
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	_, ok := httpapi.RequestIDFromContext(context.Background())
	assert.False(t, ok)

	var got string
	h := httpapi.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpapi.RequestIDFromContext(r.Context())
		require.True(t, ok)
		got = id
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, got)
}
