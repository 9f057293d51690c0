package utils

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const runIDKey ctxKey = "run_id"

// WithRunID tags ctx with a fresh run id unless one is already present.
func WithRunID(ctx context.Context) context.Context {
	if RunID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, uuid.NewString())
}

func RunID(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}
