package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aigameforge/forge/internal/domain/session"
)

type contextKey int

const sessionKey contextKey = iota

// getSession extracts the authenticated session from context. A nil
// session means the caller is working local-only.
func getSession(ctx context.Context) *session.Session {
	v, _ := ctx.Value(sessionKey).(*session.Session)
	return v
}

// SessionResolver resolves a bearer token to a session principal.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*session.Session, error)
}

// authMiddleware resolves the Authorization header to a session. A
// missing token is not an error; the request just runs without a
// session and remote operations report AUTH_REQUIRED. An invalid token
// is rejected outright so the caller knows its credentials are stale.
func authMiddleware(resolver SessionResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return next(ctx, method, req)
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return next(ctx, method, req)
			}

			sess, err := resolver.ResolveSession(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}

			ctx = context.WithValue(ctx, sessionKey, sess)
			return next(ctx, method, req)
		}
	}
}

// staticSessionMiddleware injects a fixed session on every request.
// Used in stdio mode where there are no per-request headers and the
// session, if any, comes from configuration.
func staticSessionMiddleware(sess *session.Session) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if sess != nil {
				ctx = context.WithValue(ctx, sessionKey, sess)
			}
			return next(ctx, method, req)
		}
	}
}
