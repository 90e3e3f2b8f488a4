package services

import "context"

// RequestMeta identifies the caller behind an operation.
type RequestMeta struct {
	RequestID string
	Actor     string
	// Token is forwarded to the store API; empty means the configured token.
	Token string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
