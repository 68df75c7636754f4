package auth

import (
	"fmt"
	"strings"

	"dm-relay/domain"
	"dm-relay/errors"
)

// Verifier is the admission adapter sitting between the transport
// handshake and the token layer. It exchanges a bearer credential for
// a verified identity, or rejects the connection attempt.
//
// The two failure modes are distinct on purpose: ErrMissingCredential
// means the client sent nothing, ErrInvalidCredential means the token
// was presented but rejected (malformed, expired, bad signature).
// Transports map them to distinct rejection reasons so clients can
// tell "log in again" from "no credential sent".
type Verifier struct{}

func NewVerifier() Verifier {
	return Verifier{}
}

// Admit validates a bearer credential and yields the stable identity
// bound to the connection. There is no retry: a failed admission
// terminates the connection attempt.
func (v Verifier) Admit(credential string) (domain.UserIdentity, error) {
	if strings.TrimSpace(credential) == "" {
		return domain.UserIdentity{}, errors.ErrMissingCredential
	}

	claims, err := ValidateToken(credential)
	if err != nil {
		return domain.UserIdentity{}, fmt.Errorf("%w: %v", errors.ErrInvalidCredential, err)
	}

	return domain.UserIdentity{
		ID:          domain.UserID(claims.UserID),
		DisplayName: claims.DisplayName,
	}, nil
}
