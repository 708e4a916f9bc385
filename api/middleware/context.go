package middleware

import "context"

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the caller identity set by Actor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActor).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the caller identity into the context.
func WithActor(ctx context.Context, actor string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
