// Package ristretto implements [group.Group] for ristretto255, the
// prime-order group built on top of Curve25519.
//
// ristretto255 removes the cofactor of edwards25519, so every valid
// encoding is an element of a group of prime order
// 2^252 + 27742317777372353535851937790883648493. It is the default group
// for MuSig sessions in this module.
//
// Scalars are encoded as 32-byte little-endian integers below the group
// order; elements use the 32-byte canonical ristretto255 encoding.
package ristretto

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gtank/ristretto255"

	"github.com/f3rmion/musig/group"
)

const (
	scalarSize  = 32
	elementSize = 32
	// uniformSize is the input length of SetUniformBytes.
	uniformSize = 64
)

// Scalar wraps a ristretto255 scalar.
type Scalar struct {
	inner *ristretto255.Scalar
}

func newScalar() *Scalar {
	return &Scalar{inner: ristretto255.NewScalar()}
}

// Add sets s to a + b and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.inner.Subtract(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Mul sets s to a * b and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Multiply(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Negate sets s to -a and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.Negate(a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1) and returns s. Zero has no inverse.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	aScalar := a.(*Scalar)
	if aScalar.IsZero() {
		return nil, errors.New("cannot invert zero scalar")
	}
	s.inner.Invert(aScalar.inner)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Add(a.(*Scalar).inner, ristretto255.NewScalar())
	return s
}

// SetUint64 sets s to v and returns s.
func (s *Scalar) SetUint64(v uint64) group.Scalar {
	var buf [scalarSize]byte
	binary.LittleEndian.PutUint64(buf[:8], v)
	if _, err := s.inner.SetCanonicalBytes(buf[:]); err != nil {
		// A 64-bit value is always below the group order.
		panic("ristretto: " + err.Error())
	}
	return s
}

// Bytes returns the 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.inner.Bytes()
}

// SetBytes decodes a canonical 32-byte little-endian scalar.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if _, err := s.inner.SetCanonicalBytes(data); err != nil {
		return nil, err
	}
	return s, nil
}

// Equal reports whether s and b are the same scalar.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equal(b.(*Scalar).inner) == 1
}

// IsZero reports whether s is zero.
func (s *Scalar) IsZero() bool {
	return s.inner.Equal(ristretto255.NewScalar()) == 1
}

// Point wraps a ristretto255 element.
type Point struct {
	inner *ristretto255.Element
}

func newPoint() *Point {
	return &Point{inner: ristretto255.NewIdentityElement()}
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	p.inner.Add(a.(*Point).inner, b.(*Point).inner)
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	p.inner.Subtract(a.(*Point).inner, b.(*Point).inner)
	return p
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Negate(a.(*Point).inner)
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.inner.ScalarMult(s.(*Scalar).inner, q.(*Point).inner)
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Add(a.(*Point).inner, ristretto255.NewIdentityElement())
	return p
}

// Bytes returns the canonical 32-byte encoding of p.
func (p *Point) Bytes() []byte {
	return p.inner.Bytes()
}

// SetBytes decodes a canonical ristretto255 encoding.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if _, err := p.inner.SetCanonicalBytes(data); err != nil {
		return nil, err
	}
	return p, nil
}

// Equal reports whether p and b are the same element.
func (p *Point) Equal(b group.Point) bool {
	return p.inner.Equal(b.(*Point).inner) == 1
}

// IsIdentity reports whether p is the identity element.
func (p *Point) IsIdentity() bool {
	return p.inner.Equal(ristretto255.NewIdentityElement()) == 1
}

// Group implements [group.Group] for ristretto255.
type Group struct{}

// New returns the ristretto255 group.
func New() *Group {
	return &Group{}
}

// Name returns "ristretto255".
func (g *Group) Name() string {
	return "ristretto255"
}

// NewScalar returns a zero scalar.
func (g *Group) NewScalar() group.Scalar {
	return newScalar()
}

// NewPoint returns the identity element.
func (g *Group) NewPoint() group.Point {
	return newPoint()
}

// Generator returns the canonical ristretto255 generator.
func (g *Group) Generator() group.Point {
	return &Point{inner: ristretto255.NewGeneratorElement()}
}

// RandomScalar reads 64 bytes from r and reduces them to a scalar.
func (g *Group) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [uniformSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	s := newScalar()
	if _, err := s.inner.SetUniformBytes(buf[:]); err != nil {
		return nil, err
	}
	return s, nil
}

// ScalarSize returns 32.
func (g *Group) ScalarSize() int {
	return scalarSize
}

// PointSize returns 32.
func (g *Group) PointSize() int {
	return elementSize
}
