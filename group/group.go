package group

import (
	"errors"
	"io"
)

// ErrZeroScalar is returned when a random source keeps producing the zero
// scalar. With a healthy source this never happens.
var ErrZeroScalar = errors.New("group: random source produced zero scalar")

// maxZeroDraws bounds how many consecutive zero scalars RandomNonZeroScalar
// tolerates before giving up.
const maxZeroDraws = 16

// Scalar represents an element of the scalar field associated with a
// cryptographic group. Scalars are integers modulo the group order and
// are used as secret keys, nonces, hash outputs and signature components.
//
// All arithmetic methods use a mutable receiver pattern: they modify
// the receiver, store the result in it, and return it.
type Scalar interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Scalar) Scalar
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Scalar) Scalar
	// Mul sets the receiver to a*b and returns it.
	Mul(a, b Scalar) Scalar
	// Negate sets the receiver to -a and returns it.
	Negate(a Scalar) Scalar
	// Invert sets the receiver to a^{-1} and returns it.
	// Returns an error if a is zero.
	Invert(a Scalar) (Scalar, error)
	// Set sets the receiver to a and returns it.
	Set(a Scalar) Scalar
	// SetUint64 sets the receiver to the small integer v and returns it.
	SetUint64(v uint64) Scalar
	// Bytes returns the canonical fixed-length encoding of the scalar.
	Bytes() []byte
	// SetBytes decodes a canonical encoding into the receiver.
	SetBytes(data []byte) (Scalar, error)
	// Equal reports whether the receiver equals b.
	Equal(b Scalar) bool
	// IsZero reports whether the receiver is zero.
	IsZero() bool
}

// Point represents an element of a cryptographic group, typically a point
// on an elliptic curve.
//
// Like [Scalar], all arithmetic methods use a mutable receiver pattern.
type Point interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Point) Point
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Point) Point
	// Negate sets the receiver to -a and returns it.
	Negate(a Point) Point
	// ScalarMult sets the receiver to s*p and returns it.
	ScalarMult(s Scalar, p Point) Point
	// Set sets the receiver to a and returns it.
	Set(a Point) Point
	// Bytes returns the canonical fixed-length encoding of the point.
	// The identity element is encoded too.
	Bytes() []byte
	// SetBytes decodes a canonical encoding into the receiver.
	// Returns an error if the data is not a valid group element.
	SetBytes(data []byte) (Point, error)
	// Equal reports whether the receiver equals b.
	Equal(b Point) bool
	// IsIdentity reports whether the receiver is the identity element.
	IsIdentity() bool
}

// Group is the capability set the signing protocols are written against.
// It provides factory methods for scalars and points, the generator, random
// sampling and the sizes of the canonical encodings.
//
// Example usage:
//
//	g := ristretto.New()
//	s, _ := group.RandomNonZeroScalar(g, rand.Reader)
//	p := g.NewPoint().ScalarMult(s, g.Generator())
type Group interface {
	// Name returns a short identifier such as "ristretto255".
	Name() string
	// NewScalar returns a new zero scalar.
	NewScalar() Scalar
	// NewPoint returns a new identity point.
	NewPoint() Point
	// Generator returns the group's base point.
	Generator() Point
	// RandomScalar returns a uniformly random scalar read from r.
	RandomScalar(r io.Reader) (Scalar, error)
	// ScalarSize is the length of Scalar.Bytes.
	ScalarSize() int
	// PointSize is the length of Point.Bytes.
	PointSize() int
}

// RandomNonZeroScalar samples scalars from r until it draws a non-zero one.
func RandomNonZeroScalar(g Group, r io.Reader) (Scalar, error) {
	for i := 0; i < maxZeroDraws; i++ {
		s, err := g.RandomScalar(r)
		if err != nil {
			return nil, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
	return nil, ErrZeroScalar
}

// BaseMult returns s*G as a fresh point.
func BaseMult(g Group, s Scalar) Point {
	return g.NewPoint().ScalarMult(s, g.Generator())
}
