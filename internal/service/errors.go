package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnresolvedOwner = errors.New("identity does not map to a local owner")
	ErrMisconfigured   = errors.New("auth config invalid")
)

// Token validation failures all deny access, so each wraps
// ErrUnauthorized; callers that care can still distinguish them.
var (
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrTokenRevoked   = fmt.Errorf("%w: token revoked", ErrUnauthorized)
	ErrTokenMalformed = fmt.Errorf("%w: token malformed", ErrUnauthorized)
	ErrWrongTokenKind = fmt.Errorf("%w: wrong token kind", ErrUnauthorized)
)
