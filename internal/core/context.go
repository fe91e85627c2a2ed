package core

import "context"

type contextKey string

const ctxKeyClient contextKey = "edit_client"

// Client identifies who issued an edit. It is recorded on every EditEntry.
type Client struct {
	IPAddress string
	UserAgent string
}

// ContextWithClient attaches c to ctx for the edit log.
func ContextWithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, ctxKeyClient, c)
}

// ClientFromContext returns the Client stored in ctx, or the zero Client.
func ClientFromContext(ctx context.Context) Client {
	if c, ok := ctx.Value(ctxKeyClient).(Client); ok {
		return c
	}
	return Client{}
}
