package translator

import "context"

// AnonymousUser is recorded as the acting user for anonymous requests.
const AnonymousUser = "Anonymous"

// Identity is the acting user of a request.
type Identity struct {
	Anonymous bool
	Name      string
}

// UserName returns the name recorded in audit metadata.
func (i Identity) UserName() string {
	if i.Anonymous || i.Name == "" {
		return AnonymousUser
	}
	return i.Name
}

type identityKey struct{}

// ContextWithIdentity attaches the acting user to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the acting user. Requests without an
// identity are anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{Anonymous: true}
}
