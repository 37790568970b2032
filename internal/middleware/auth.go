package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// TokenHeader carries the session token on every call.
const TokenHeader = "x-token"

type tokenKey struct{}

// TokenInterceptor copies the session token from metadata into the context.
// It never rejects a call: some operations accept anonymous callers, so
// authorization is decided by the file manager.
func TokenInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return handler(ctx, req)
	}
	if tokens := md.Get(TokenHeader); len(tokens) > 0 {
		ctx = WithToken(ctx, strings.TrimSpace(tokens[0]))
	}
	return handler(ctx, req)
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by TokenInterceptor, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// OutgoingToken attaches token to a client call.
func OutgoingToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, TokenHeader, token)
}
