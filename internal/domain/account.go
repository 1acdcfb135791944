package domain

import (
	"context"
	"time"
)

// Account is a store owner. Each account owns exactly one wallet.
type Account struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role represents an account's access level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// CanReconcile checks if the role may run ledger-wide checks.
func (r Role) CanReconcile() bool {
	return r == RoleAdmin
}

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID string
	Email     string
	Role      Role
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
