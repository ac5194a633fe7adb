package service

import "errors"

var (
	ErrUserNotActive          = errors.New("user not active")
	ErrUserNotFoundOrInactive = errors.New("user not found or inactive")
	ErrTokenRevoked           = errors.New("token revoked")
	ErrSuspiciousActivity     = errors.New("suspicious activity detected")
	ErrSamePassword           = errors.New("new password cannot be the same as the old one")
)
