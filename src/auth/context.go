package auth

import (
	"context"
)

type contextKey string

const OperatorKey contextKey = "operator"

// WithOperator marks ctx as carrying a verified operator token.
func WithOperator(ctx context.Context) context.Context {
	return context.WithValue(ctx, OperatorKey, true)
}

func IsOperator(ctx context.Context) bool {
	ok, _ := ctx.Value(OperatorKey).(bool)
	return ok
}
