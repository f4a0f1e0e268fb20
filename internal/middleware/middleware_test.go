package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"biju-kart/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a downstream handler that notes whether it ran.
type recorder struct {
	called bool
	status int
}

func (h *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	status := h.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		wantStatus int
		wantNext   bool
	}{
		{name: "Preflight stops the chain", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantNext: false},
		{name: "Cart read passes through", method: http.MethodGet, wantStatus: http.StatusOK, wantNext: true},
		{name: "Item update passes through", method: http.MethodPut, wantStatus: http.StatusOK, wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &recorder{}
			w := httptest.NewRecorder()

			CORS(next).ServeHTTP(w, httptest.NewRequest(tt.method, "/api/cart/items/P001", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantNext, next.called)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), APIKeyHeader)
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
			assert.Equal(t, SessionHeader, w.Header().Get("Access-Control-Expose-Headers"))
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	const key = "storefront-key"

	tests := []struct {
		name     string
		path     string
		header   string
		wantNext bool
		wantMsg  string
	}{
		{name: "Matching key", path: "/api/cart", header: key, wantNext: true},
		{name: "Wrong key", path: "/api/cart", header: "storefront-kez", wantMsg: "invalid API key"},
		{name: "Short wrong key", path: "/api/cart", header: "x", wantMsg: "invalid API key"},
		{name: "No key", path: "/api/checkout", wantMsg: "missing API key"},
		{name: "Public path", path: "/health", wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &recorder{}
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()

			APIKeyAuth(key, zerolog.Nop(), "/health")(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantNext, next.called)
			if tt.wantNext {
				assert.Equal(t, http.StatusOK, w.Code)
				return
			}

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, model.ErrCodeUnauthorised, body.Error)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestAPIKeyAuth_HealthIsProtectedUnlessListed(t *testing.T) {
	next := &recorder{}
	w := httptest.NewRecorder()

	APIKeyAuth("k", zerolog.Nop())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.False(t, next.called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSession(t *testing.T) {
	t.Run("Existing session is kept", func(t *testing.T) {
		var seen string
		h := Session(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = SessionIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set(SessionHeader, "session-abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "session-abc", seen)
		assert.Equal(t, "session-abc", w.Header().Get(SessionHeader))
	})

	t.Run("Missing session gets a fresh uuid", func(t *testing.T) {
		var seen string
		h := Session(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = SessionIDFromContext(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(SessionHeader))
	})

	t.Run("Two anonymous requests get different sessions", func(t *testing.T) {
		h := Session(zerolog.Nop())(&recorder{})

		first, second := httptest.NewRecorder(), httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
		h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

		assert.NotEqual(t, first.Header().Get(SessionHeader), second.Header().Get(SessionHeader))
	})
}

func TestSessionIDFromContext(t *testing.T) {
	assert.Empty(t, SessionIDFromContext(context.Background()))
	assert.Equal(t, "s1", SessionIDFromContext(WithSessionID(context.Background(), "s1")))
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "Success logs at info", status: http.StatusCreated, wantLevel: "info"},
		{name: "Client error logs at info", status: http.StatusPaymentRequired, wantLevel: "info"},
		{name: "Server error logs at error", status: http.StatusInternalServerError, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := chimw.RequestID(Logging(zerolog.New(&buf))(Session(zerolog.Nop())(&recorder{status: tt.status})))

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
			req.Header.Set(SessionHeader, "session-xyz")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, "/api/checkout", entry["path"])
			assert.Equal(t, "session-xyz", entry["session_id"])
			assert.NotEmpty(t, entry["request_id"])
		})
	}
}

func TestLogging_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"bytes":12`)
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "String panic", value: "cart exploded"},
		{name: "Error panic", value: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cart/items", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, model.ErrCodeInternalError, body.Error)
		})
	}
}

func TestRecovery_NoPanic(t *testing.T) {
	next := &recorder{status: http.StatusAccepted}
	w := httptest.NewRecorder()

	Recovery(zerolog.Nop())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRecovery_RepanicsOnAbort(t *testing.T) {
	h := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	})
}
