// Package ed25519 implements [group.Group] over the prime-order subgroup
// of the edwards25519 curve, using filippo.io/edwards25519.
//
// Decoding rejects any point with a torsion component, so aggregated keys
// and nonces always live in the subgroup of order
// 2^252 + 27742317777372353535851937790883648493.
package ed25519

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"filippo.io/edwards25519"

	"github.com/f3rmion/musig/group"
)

const (
	scalarSize = 32
	pointSize  = 32
	wideSize   = 64
)

var (
	errTorsion      = errors.New("ed25519: point has a torsion component")
	errNonCanonical = errors.New("ed25519: non-canonical point encoding")
)

// Scalar wraps an edwards25519 scalar.
type Scalar struct {
	inner *edwards25519.Scalar
}

func newScalar() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar()}
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
	s.inner.Set(a.(*Scalar).inner)
	return s
}

// SetUint64 sets s to v and returns s.
func (s *Scalar) SetUint64(v uint64) group.Scalar {
	var buf [scalarSize]byte
	binary.LittleEndian.PutUint64(buf[:8], v)
	if _, err := s.inner.SetCanonicalBytes(buf[:]); err != nil {
		panic("ed25519: " + err.Error())
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
	return s.inner.Equal(edwards25519.NewScalar()) == 1
}

// Point wraps an edwards25519 point.
type Point struct {
	inner *edwards25519.Point
}

func newPoint() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint()}
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
	p.inner.Set(a.(*Point).inner)
	return p
}

// Bytes returns the canonical 32-byte encoding of p.
func (p *Point) Bytes() []byte {
	return p.inner.Bytes()
}

// SetBytes decodes a 32-byte point encoding and checks that the point is
// in the prime-order subgroup. Only the encoding Bytes produces is accepted:
// y >= p and a set sign bit on x = 0 are rejected.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	decoded, err := edwards25519.NewIdentityPoint().SetBytes(data)
	if err != nil {
		return nil, err
	}
	if !torsionFree(decoded) {
		return nil, errTorsion
	}
	if !bytes.Equal(decoded.Bytes(), data) {
		return nil, errNonCanonical
	}
	p.inner.Set(decoded)
	return p, nil
}

// torsionFree reports whether [l]q is the identity, computed as [l-1]q + q.
func torsionFree(q *edwards25519.Point) bool {
	one := edwards25519.NewScalar()
	var buf [scalarSize]byte
	buf[0] = 1
	if _, err := one.SetCanonicalBytes(buf[:]); err != nil {
		return false
	}
	lMinusOne := edwards25519.NewScalar().Negate(one)
	check := edwards25519.NewIdentityPoint().ScalarMult(lMinusOne, q)
	check.Add(check, q)
	return check.Equal(edwards25519.NewIdentityPoint()) == 1
}

// Equal reports whether p and b are the same point.
func (p *Point) Equal(b group.Point) bool {
	return p.inner.Equal(b.(*Point).inner) == 1
}

// IsIdentity reports whether p is the identity point.
func (p *Point) IsIdentity() bool {
	return p.inner.Equal(edwards25519.NewIdentityPoint()) == 1
}

// Group implements [group.Group] for edwards25519.
type Group struct{}

// New returns the edwards25519 group.
func New() *Group {
	return &Group{}
}

// Name returns "edwards25519".
func (g *Group) Name() string {
	return "edwards25519"
}

// NewScalar returns a zero scalar.
func (g *Group) NewScalar() group.Scalar {
	return newScalar()
}

// NewPoint returns the identity point.
func (g *Group) NewPoint() group.Point {
	return newPoint()
}

// Generator returns the edwards25519 base point.
func (g *Group) Generator() group.Point {
	return &Point{inner: edwards25519.NewGeneratorPoint()}
}

// RandomScalar reads 64 bytes from r and reduces them to a scalar.
func (g *Group) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [wideSize]byte
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
	return pointSize
}
