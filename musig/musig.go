package musig

import (
	"fmt"

	"github.com/f3rmion/musig/group"
)

// KeyOrder selects how a public key list is ordered before it is hashed
// into the aggregation coefficients.
type KeyOrder int

const (
	// KeyOrderSorted sorts keys by their canonical encoding, so every party
	// derives the same aggregate key however it received the list.
	KeyOrderSorted KeyOrder = iota
	// KeyOrderGiven hashes keys in the order supplied by the caller. The
	// list order must then be agreed out of band.
	KeyOrderGiven
)

// String returns "sorted" or "given".
func (o KeyOrder) String() string {
	switch o {
	case KeyOrderSorted:
		return "sorted"
	case KeyOrderGiven:
		return "given"
	default:
		return fmt.Sprintf("KeyOrder(%d)", int(o))
	}
}

// ParseKeyOrder parses the output of [KeyOrder.String].
func ParseKeyOrder(s string) (KeyOrder, error) {
	switch s {
	case "", "sorted":
		return KeyOrderSorted, nil
	case "given":
		return KeyOrderGiven, nil
	default:
		return 0, fmt.Errorf("unknown key order %q", s)
	}
}

// MuSig holds the group, hash oracle and key ordering shared by signers,
// sessions and verifiers. All parties of one signature must use
// identically configured instances.
type MuSig struct {
	group  group.Group
	hasher Hasher
	order  KeyOrder
}

// Option configures a MuSig instance.
type Option func(*MuSig)

// WithHasher sets the hash oracle. The default is [SHA256Hasher].
func WithHasher(h Hasher) Option {
	return func(m *MuSig) {
		m.hasher = h
	}
}

// WithKeyOrder sets the key ordering. The default is [KeyOrderSorted].
func WithKeyOrder(o KeyOrder) Option {
	return func(m *MuSig) {
		m.order = o
	}
}

// New creates a MuSig instance over g.
func New(g group.Group, opts ...Option) *MuSig {
	m := &MuSig{
		group:  g,
		hasher: &SHA256Hasher{},
		order:  KeyOrderSorted,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Group returns the underlying group.
func (m *MuSig) Group() group.Group {
	return m.group
}

// Hasher returns the hash oracle.
func (m *MuSig) Hasher() Hasher {
	return m.hasher
}

// KeyOrder returns the configured key ordering.
func (m *MuSig) KeyOrder() KeyOrder {
	return m.order
}

// Commit returns the nonce commitment Hash("com", R).
func (m *MuSig) Commit(R group.Point) group.Scalar {
	return m.hasher.HashToScalar(m.group, TagCom, R.Bytes())
}

// Challenge returns c = Hash("sig", X, R, message).
func (m *MuSig) Challenge(X, R group.Point, message []byte) group.Scalar {
	return m.hasher.HashToScalar(m.group, TagSig, X.Bytes(), R.Bytes(), message)
}
