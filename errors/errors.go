package errors

import "fmt"

// Board errors. Every guarded operation either fully succeeds or fails with
// one of these, leaving no observable state change.
var (
	ErrEmptyMessage          = fmt.Errorf("note content is empty")
	ErrZeroAddress           = fmt.Errorf("zero address")
	ErrInsufficientAllowance = fmt.Errorf("allowance below current fee")
	ErrUnauthorized          = fmt.Errorf("caller is not the owner")
	ErrReentrant             = fmt.Errorf("reentrant call")
	ErrOutOfRange            = fmt.Errorf("note id out of range")
	ErrEmptyBoard            = fmt.Errorf("board holds no notes")
)

// Token errors, surfaced unchanged through the board.
var (
	ErrInsufficientBalance = fmt.Errorf("insufficient token balance")
	ErrPermitExpired       = fmt.Errorf("permit deadline has passed")
	ErrBadSignature        = fmt.Errorf("invalid permit signature")
	ErrPermitUnsupported   = fmt.Errorf("token does not support permit")
	ErrUnknownAccount      = fmt.Errorf("unknown token account")
)

// Auth errors for the HTTP surface.
var (
	ErrInvalidToken    = fmt.Errorf("invalid or expired token")
	ErrTokenGeneration = fmt.Errorf("token generation failed")
)
