package entity

import "github.com/pkg/errors"

var (
	// ErrUnauthorized is returned when the caller lacks the required role
	// or acts on behalf of an account it does not control.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSenderFrozen is returned when the sending account is frozen.
	ErrSenderFrozen = errors.New("sender is frozen")
	// ErrRecipientFrozen is returned when the receiving account is frozen.
	ErrRecipientFrozen = errors.New("recipient is frozen")
	// ErrInsufficientBalance is returned when a debit would drive a balance
	// below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrLengthMismatch is returned when paired array arguments differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrInvalidAmount is returned for negative or fractional amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnknownAsset is returned when mutating an asset id that was never allocated.
	ErrUnknownAsset = errors.New("unknown asset")
)
