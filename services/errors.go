package services

import "errors"

// Sentinel errors handlers map to HTTP status codes.
var (
	ErrForbidden = errors.New("access denied")
	ErrNotFound  = errors.New("not found")
)
