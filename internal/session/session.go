// Package session carries the signed-in operator's identity explicitly through
// the console: every backend call receives a *Session instead of reading cookies.
package session

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole maps the backend's role string; anything that is not admin is an employee.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleEmployee
}

// Home is the screen a freshly signed-in operator lands on.
func (r Role) Home() string {
	if r == RoleAdmin {
		return "/admin_dashboard"
	}
	return "/sells"
}

type Session struct {
	ID        string
	Email     string
	Role      Role
	OrgCode   string
	ExpiresAt time.Time

	// BackendToken is the credential the backend issued at sign-in. It never
	// leaves the console host.
	BackendToken string
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
