// Package access answers one question for rendering code: does the acting
// principal hold a role. An absent principal holds nothing.
package access

import (
	"context"
	"slices"
)

type Role string

const (
	RoleAdmin Role = "ROLE_ADMIN"
	RoleUser  Role = "ROLE_USER"
)

// Principal is the acting user's role set. It is supplied by the caller per
// render and never mutated here.
type Principal struct {
	Name  string
	roles map[Role]struct{}
}

func NewPrincipal(name string, roles ...Role) *Principal {
	p := &Principal{Name: name, roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		p.roles[r] = struct{}{}
	}
	return p
}

// Roles returns the held roles, sorted.
func (p *Principal) Roles() []Role {
	if p == nil {
		return nil
	}
	out := make([]Role, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// HasRole reports whether p holds role. A nil principal yields false for every role.
func HasRole(p *Principal, role Role) bool {
	if p == nil || role == "" {
		return false
	}
	_, ok := p.roles[role]
	return ok
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
