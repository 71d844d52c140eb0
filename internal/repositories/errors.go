package repositories

import "errors"

var (
	ErrEmailExists          = errors.New("email already exists")
	ErrNewsletterSent       = errors.New("cannot delete a sent newsletter")
	ErrInvalidTwoFactorCode = errors.New("invalid two factor code")
	ErrTwoFactorCodeExpired = errors.New("two factor code expired")
)
