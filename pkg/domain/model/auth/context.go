package auth

import "context"

type ctxKey struct{}

// ContextWithIdentity attaches the acting identity to the context
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom extracts the acting identity from the context. Returns nil
// when no identity is attached.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
