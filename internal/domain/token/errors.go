package token

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInsufficientBalance is returned when a debit would overdraw a real user
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// ErrDuplicateKey is returned by the repository on an idempotency key collision
	ErrDuplicateKey = errors.New("idempotency key already used")

	// ErrSameAccount is returned when debit and credit sides are the same account
	ErrSameAccount = errors.New("debit and credit accounts must differ")

	ErrInternal = errors.New("internal error")
)
