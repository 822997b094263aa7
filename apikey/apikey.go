package apikey

import (
	"context"
	"strings"
)

// HeaderName is the request header carrying the admin API key.
const HeaderName = "X-Api-Key"

const (
	RoleAPIKeyUser = "ApiKeyUser"
	apiUserID      = "api-user"
	anonymousID    = "anonymous"
)

// Identity is who a request acts as. It is attached to each request's
// context and never shared between requests.
type Identity struct {
	ID     string
	Roles  []string
	APIKey bool
	// KeyUsed is the matched key. It must never be logged.
	KeyUsed string
}

var Anonymous = Identity{ID: anonymousID}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i Identity) IsAnonymous() bool {
	return !i.APIKey
}

// ParseKeys splits a comma-separated key list, trimming each key and
// dropping empty entries.
func ParseKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Gate maps an API key header value to an Identity. It never rejects.
type Gate struct {
	keys map[string]struct{}
}

func NewGate(keys []string) *Gate {
	g := &Gate{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		g.keys[k] = struct{}{}
	}
	return g
}

func (g *Gate) Identify(headerValue string) Identity {
	if headerValue == "" || g == nil {
		return Anonymous
	}
	if _, ok := g.keys[headerValue]; !ok {
		return Anonymous
	}
	return Identity{
		ID:      apiUserID,
		Roles:   []string{RoleAPIKeyUser},
		APIKey:  true,
		KeyUsed: headerValue,
	}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the request identity, or Anonymous when none is set.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
