package httpx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type fakeUsers struct {
	id    int64
	ok    bool
	calls *int
}

func (f fakeUsers) CurrentUser(*http.Request) (int64, bool) {
	if f.calls != nil {
		*f.calls++
	}
	return f.id, f.ok
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(false)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
}

func TestRequestSizeLimit(t *testing.T) {
	h := RequestSizeLimit(1024)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 512))))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 2048))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(requestIDHeader))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc-123", seen)
}

func TestRequireLogin(t *testing.T) {
	var gotID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFrom(r)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous is redirected", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireLogin(fakeUsers{})(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))
	})

	t.Run("logged in passes user id", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireLogin(fakeUsers{id: 12, ok: true})(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(12), gotID)
	})
}

func TestAccessLogAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(panicking, RequestIDMiddleware, AccessLog(log), Recovery(log), RequireLogin(fakeUsers{id: 3, ok: true}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var panicEntry, accessEntry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &panicEntry))
	require.NoError(t, json.Unmarshal(lines[1], &accessEntry))

	assert.Equal(t, "panic recovered", panicEntry["msg"])
	assert.Equal(t, "access", accessEntry["msg"])
	assert.Equal(t, "/books/x", accessEntry["path"])
	assert.Equal(t, float64(http.StatusInternalServerError), accessEntry["status"])
	assert.Equal(t, float64(3), accessEntry["user_id"])
	assert.Equal(t, panicEntry["request_id"], accessEntry["request_id"])
}

func TestCurrentUser_ResolvesOncePerRequest(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	calls := 0
	users := fakeUsers{id: 7, ok: true, calls: &calls}
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := CurrentUser(r, users)
		assert.True(t, ok)
		assert.Equal(t, int64(7), id)
		_, _ = CurrentUser(r, users)
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	Chain(page, AccessLog(log)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, 1, calls)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, float64(7), entry["user_id"])
}

func TestAccessLog_DoesNotResolveSessionItself(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	w := httptest.NewRecorder()
	Chain(okHandler(), AccessLog(log)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/0451526538", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "access", entry["msg"])
	assert.NotContains(t, entry, "user_id")
}

func TestCurrentUser_WithoutAccessLog(t *testing.T) {
	calls := 0
	users := fakeUsers{ok: false, calls: &calls}
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := CurrentUser(r, users)
	assert.False(t, ok)
	_, ok = CurrentUser(r, nil)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestFlash_RoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, "User alice registered.")

	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	w2 := httptest.NewRecorder()
	assert.Equal(t, "User alice registered.", PopFlash(w2, r))

	cleared := w2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.Empty(t, PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestJSONError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "rid"))
	w := httptest.NewRecorder()

	JSONError(w, r, http.StatusNotFound, "book not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"book not found","request_id":"rid"}`, w.Body.String())
}
