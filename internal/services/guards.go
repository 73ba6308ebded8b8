package services

import "github.com/tbourn/apple-market/internal/domain"

// RequireLogin returns ErrUnauthenticated when p is nil.
func RequireLogin(p *domain.Principal) error {
	if p == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin returns ErrUnauthenticated when p is nil and ErrForbidden
// when p is not an administrator.
func RequireAdmin(p *domain.Principal) error {
	if err := RequireLogin(p); err != nil {
		return err
	}
	if !p.IsAdmin {
		return ErrForbidden
	}
	return nil
}
