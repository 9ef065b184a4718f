package musig

import (
	"fmt"

	"github.com/f3rmion/musig/group"
)

// Signature is an aggregate MuSig signature (s, R). It verifies like a
// single-signer Schnorr signature under the aggregate key.
type Signature struct {
	group group.Group
	s     group.Scalar
	r     group.Point
}

func newSignature(g group.Group, s group.Scalar, R group.Point) *Signature {
	return &Signature{group: g, s: s, r: R}
}

// NewSignature builds a signature from its components.
func NewSignature(g group.Group, s group.Scalar, R group.Point) *Signature {
	return newSignature(g, g.NewScalar().Set(s), g.NewPoint().Set(R))
}

// S returns a copy of the response scalar.
func (sig *Signature) S() group.Scalar {
	return sig.group.NewScalar().Set(sig.s)
}

// R returns a copy of the aggregate nonce.
func (sig *Signature) R() group.Point {
	return sig.group.NewPoint().Set(sig.r)
}

// Bytes encodes the signature as s || R.
func (sig *Signature) Bytes() []byte {
	out := make([]byte, 0, sig.group.ScalarSize()+sig.group.PointSize())
	out = append(out, sig.s.Bytes()...)
	return append(out, sig.r.Bytes()...)
}

// ParseSignature decodes the output of [Signature.Bytes].
func (m *MuSig) ParseSignature(b []byte) (*Signature, error) {
	ss, ps := m.group.ScalarSize(), m.group.PointSize()
	if len(b) != ss+ps {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidSignature, len(b), ss+ps)
	}
	s, err := m.group.NewScalar().SetBytes(b[:ss])
	if err != nil {
		return nil, fmt.Errorf("%w: scalar: %w", ErrInvalidSignature, err)
	}
	R, err := m.group.NewPoint().SetBytes(b[ss:])
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrInvalidSignature, err)
	}
	return newSignature(m.group, s, R), nil
}

// Verify aggregates keys and checks sig over message. It returns false for
// any invalid input, including a key list that cannot be aggregated.
func (m *MuSig) Verify(sig *Signature, keys []group.Point, message []byte) bool {
	agg, err := m.AggregateKeys(keys)
	if err != nil {
		return false
	}
	return m.VerifyAggregate(sig, agg.Key, message)
}

// VerifyAggregate checks s*G == R + c*X with c = Hash("sig", X, R, message).
// An identity X or R never verifies.
func (m *MuSig) VerifyAggregate(sig *Signature, X group.Point, message []byte) bool {
	if sig == nil || sig.s == nil || sig.r == nil || X == nil {
		return false
	}
	if X.IsIdentity() || sig.r.IsIdentity() {
		return false
	}
	c := m.Challenge(X, sig.r, message)
	lhs := group.BaseMult(m.group, sig.s)
	rhs := m.group.NewPoint().Add(sig.r, m.group.NewPoint().ScalarMult(c, X))
	return lhs.Equal(rhs)
}
