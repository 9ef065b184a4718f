package musig

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeys is returned when a session or aggregation has no signers.
	ErrNoKeys = errors.New("musig: empty public key list")
	// ErrIdentityKey is returned when a public key is the identity element.
	ErrIdentityKey = errors.New("musig: public key is the identity element")
	// ErrIdentityAggregate is returned when the aggregate key is the identity.
	ErrIdentityAggregate = errors.New("musig: aggregate key is the identity element")
	// ErrIdentityNonce is returned when the aggregate nonce is the identity.
	ErrIdentityNonce = errors.New("musig: aggregate nonce is the identity element")
	// ErrCommitmentMismatch is returned when an opened nonce does not hash to
	// its published commitment.
	ErrCommitmentMismatch = errors.New("musig: nonce does not match commitment")
	// ErrInvalidPartial is returned when a partial signature does not verify
	// against its signer's nonce and key.
	ErrInvalidPartial = errors.New("musig: invalid partial signature")
	// ErrDegenerateNonce is returned when no non-zero nonce could be sampled.
	ErrDegenerateNonce = errors.New("musig: degenerate nonce")
	// ErrZeroSecret is returned for a zero secret key.
	ErrZeroSecret = errors.New("musig: secret key is zero")
	// ErrNonceConsumed is returned when a signer's nonce was already used,
	// handed to a session, or discarded.
	ErrNonceConsumed = errors.New("musig: nonce already consumed")
	// ErrStateConsumed is returned when a session handle is advanced twice.
	ErrStateConsumed = errors.New("musig: session state already advanced")
	// ErrContributionCount is returned when the number of contributions does
	// not match the number of signers.
	ErrContributionCount = errors.New("musig: contribution count does not match signer count")
	// ErrInvalidSignature is returned for a malformed signature encoding.
	ErrInvalidSignature = errors.New("musig: malformed signature")
)

// KeyError reports the position of an invalid public key.
type KeyError struct {
	Index int
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("musig: public key %d is the identity element", e.Index)
}

// Is reports whether target is ErrIdentityKey.
func (e *KeyError) Is(target error) bool {
	return target == ErrIdentityKey
}

// CommitmentError identifies the signer whose nonce opening failed.
type CommitmentError struct {
	Index int
}

func (e *CommitmentError) Error() string {
	return fmt.Sprintf("musig: nonce of signer %d does not match its commitment", e.Index)
}

// Is reports whether target is ErrCommitmentMismatch.
func (e *CommitmentError) Is(target error) bool {
	return target == ErrCommitmentMismatch
}

// PartialError identifies the signer whose partial signature is invalid.
type PartialError struct {
	Index int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("musig: partial signature of signer %d is invalid", e.Index)
}

// Is reports whether target is ErrInvalidPartial.
func (e *PartialError) Is(target error) bool {
	return target == ErrInvalidPartial
}
