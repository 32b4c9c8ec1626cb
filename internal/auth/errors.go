package auth

import "errors"

var (
	// ErrUnauthenticated means no identity was resolved for the request.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden means the resolved identity is not allowed to act.
	ErrForbidden = errors.New("auth: forbidden")

	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenSignature = errors.New("auth: token signature invalid")
	ErrTokenExpired   = errors.New("auth: token expired")
)
