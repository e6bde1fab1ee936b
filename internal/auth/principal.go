// Package auth identifies the caller of the order and receipt endpoints.
package auth

import (
	"context"
	"strings"
)

// Roles carried by principals.
const (
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
	// RoleWebhook marks payment processor callbacks allowed to update any
	// merchant's receipts.
	RoleWebhook = "webhook"
)

// Principal is an authenticated caller.
type Principal struct {
	Wallet string
	Roles  []string
	Source string
}

// HasRole reports whether the principal carries role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// CanActOn reports whether the principal may touch wallet's receipts.
func (p *Principal) CanActOn(wallet string) bool {
	if p.HasRole(RoleAdmin) || p.HasRole(RoleWebhook) {
		return true
	}
	return p.Wallet != "" && p.Wallet == NormalizeWallet(wallet)
}

// NormalizeWallet lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
