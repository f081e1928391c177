package reputation

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmptyReason  = errors.New("strike reason is required")
)
