package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userSlotKey  contextKey = "userSlot"
	requestIDKey contextKey = "requestID"
)

// userSlot remembers the session lookup made while serving one request.
type userSlot struct {
	id       int64
	ok       bool
	resolved bool
}

func contextWithUserSlot(ctx context.Context) (context.Context, *userSlot) {
	slot := &userSlot{}
	return context.WithValue(ctx, userSlotKey, slot), slot
}

// UserIDFrom returns the logged-in user id placed on the request by RequireLogin.
func UserIDFrom(r *http.Request) (int64, bool) {
	v, ok := r.Context().Value(userIDKey).(int64)
	return v, ok
}

// CurrentUser returns the logged-in user for r. Behind AccessLog the session
// is looked up at most once per request; the result is also what the access
// line records.
func CurrentUser(r *http.Request, users UserResolver) (int64, bool) {
	if id, ok := UserIDFrom(r); ok {
		return id, true
	}
	slot, _ := r.Context().Value(userSlotKey).(*userSlot)
	if slot != nil && slot.resolved {
		return slot.id, slot.ok
	}
	if users == nil {
		return 0, false
	}
	id, ok := users.CurrentUser(r)
	if slot != nil {
		slot.id, slot.ok, slot.resolved = id, ok, true
	}
	return id, ok
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
