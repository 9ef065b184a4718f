// Package schnorr implements single-party Schnorr signatures and
// Diffie-Hellman key agreement over any [group.Group].
//
// Signatures share the [musig.Signature] encoding, so a single-signer
// signature and a MuSig aggregate signature have the same wire format. The
// challenge is domain separated from MuSig's.
package schnorr

import (
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/musig"
)

// TagChallenge is the domain separation tag of the signature challenge.
const TagChallenge = "schnorr"

var (
	// ErrZeroKey is returned for a zero secret key.
	ErrZeroKey = errors.New("schnorr: secret key is zero")
	// ErrIdentityPeer is returned when the peer's public key is the identity.
	ErrIdentityPeer = errors.New("schnorr: peer public key is the identity element")
	// ErrIdentitySecret is returned when key agreement yields the identity.
	ErrIdentitySecret = errors.New("schnorr: shared secret is the identity element")
)

// GenerateKey returns a random non-zero secret key and its public key.
func GenerateKey(g group.Group, rng io.Reader) (group.Scalar, group.Point, error) {
	sk, err := group.RandomNonZeroScalar(g, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("generate secret key: %w", err)
	}
	return sk, group.BaseMult(g, sk), nil
}

func challenge(g group.Group, h musig.Hasher, pk, R group.Point, msg []byte) group.Scalar {
	return h.HashToScalar(g, TagChallenge, pk.Bytes(), R.Bytes(), msg)
}

// Sign returns (s, R) with R = r*G and s = r + c*sk, where
// c = Hash("schnorr", pk, R, msg).
func Sign(g group.Group, h musig.Hasher, rng io.Reader, sk group.Scalar, msg []byte) (*musig.Signature, error) {
	if sk == nil || sk.IsZero() {
		return nil, ErrZeroKey
	}
	r, err := group.RandomNonZeroScalar(g, rng)
	if err != nil {
		return nil, fmt.Errorf("sample nonce: %w", err)
	}
	defer r.Set(g.NewScalar())

	R := group.BaseMult(g, r)
	c := challenge(g, h, group.BaseMult(g, sk), R, msg)
	s := g.NewScalar().Add(r, g.NewScalar().Mul(c, sk))
	return musig.NewSignature(g, s, R), nil
}

// Verify checks s*G == R + c*pk. An identity pk or R never verifies.
func Verify(g group.Group, h musig.Hasher, pk group.Point, sig *musig.Signature, msg []byte) bool {
	if sig == nil || pk == nil || pk.IsIdentity() {
		return false
	}
	R := sig.R()
	if R.IsIdentity() {
		return false
	}
	c := challenge(g, h, pk, R, msg)
	lhs := group.BaseMult(g, sig.S())
	rhs := g.NewPoint().Add(R, g.NewPoint().ScalarMult(c, pk))
	return lhs.Equal(rhs)
}

// SharedSecret returns sk*peer. Both parties derive the same point from
// their own secret and the other's public key.
func SharedSecret(g group.Group, sk group.Scalar, peer group.Point) (group.Point, error) {
	if sk == nil || sk.IsZero() {
		return nil, ErrZeroKey
	}
	if peer == nil || peer.IsIdentity() {
		return nil, ErrIdentityPeer
	}
	shared := g.NewPoint().ScalarMult(sk, peer)
	if shared.IsIdentity() {
		return nil, ErrIdentitySecret
	}
	return shared, nil
}
