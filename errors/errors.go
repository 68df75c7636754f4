package errors

import (
	"errors"
	"fmt"
)

var (
	// Admission failures. Both are fatal to the connection attempt.
	ErrMissingCredential = fmt.Errorf("no credential presented")
	ErrInvalidCredential = fmt.Errorf("credential rejected")

	// Protocol failures reported to the calling connection.
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrRecipientNotFound = fmt.Errorf("recipient not found")
	ErrStore             = fmt.Errorf("store failure")

	ErrSelfConversation = fmt.Errorf("a conversation needs two distinct users")

	// Account management.
	ErrUserNotFound        = fmt.Errorf("user not found")
	ErrUserAlreadyExists   = fmt.Errorf("username already taken")
	ErrInvalidCredentials  = fmt.Errorf("invalid username or password")
	ErrInvalidRegistration = fmt.Errorf("invalid registration data")
	ErrInvalidPassword     = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)

// Wire error codes emitted in error frames.
const (
	CodeInvalidPayload    = "InvalidPayload"
	CodeRecipientNotFound = "RecipientNotFound"
	CodeStoreError        = "StoreError"
)

// CodeFor maps an internal error to the wire code reported to the client.
// Anything not recognized as a caller error is surfaced as a store failure,
// never with internal detail.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrSelfConversation):
		return CodeInvalidPayload
	case errors.Is(err, ErrRecipientNotFound):
		return CodeRecipientNotFound
	default:
		return CodeStoreError
	}
}
