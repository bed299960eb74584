package middleware

import "context"

type contextKey string

const ctxUserID contextKey = "user_id"

// UserIDFromContext returns the authenticated user id, if the auth gate ran.
func UserIDFromContext(ctx context.Context) (int32, bool) {
	if ctx == nil {
		return 0, false
	}
	if v, ok := ctx.Value(ctxUserID).(int32); ok {
		return v, true
	}
	return 0, false
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID int32) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}
