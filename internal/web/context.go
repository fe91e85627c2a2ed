package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/JonMunkholm/stockpilot/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for the edit log.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, core.Client{
		IPAddress: middleware.ClientIP(r), // already rewritten by TrustedRealIP
		UserAgent: r.Header.Get("User-Agent"),
	})
}
