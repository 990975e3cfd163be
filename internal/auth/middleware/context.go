package auth

import "context"

type ctxKey string

const ctxKeySub ctxKey = "sub"

func WithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeySub, userID)
}

// SubjectFromContext returns the authenticated user ID, or "" when the
// request never went through TokenMiddleware.
func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
