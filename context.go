package goRelay

import "context"

type requestIDContextKey struct{}
type sourceContextKey struct{}

// WithRequestID attaches a correlation id to ctx. Message.RequestID takes
// precedence when both are set.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// WithSource tags ctx with the sending component ("content-script", "popup",
// "native", ...). It is recorded on audit events and log lines only.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceContextKey{}, source)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func sourceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	source, _ := ctx.Value(sourceContextKey{}).(string)
	return source
}
