package model

import "errors"

// Session token errors. Both collapse to "unauthenticated" at the HTTP edge.
var (
	ErrTokenInvalid = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)
