// Package p256 implements [group.Group] for NIST P-256 on top of the
// cloudflare/circl group abstraction.
//
// Scalars are 32-byte big-endian integers below the group order. Points are
// 33-byte SEC1 compressed encodings, with the identity written as 33 zero
// bytes.
package p256

import (
	"bytes"
	"crypto/elliptic"
	"errors"
	"io"
	"math/big"

	circl "github.com/cloudflare/circl/group"

	"github.com/f3rmion/musig/group"
)

const (
	scalarSize = 32
	pointSize  = 33
	wideSize   = 48
)

var (
	order = elliptic.P256().Params().N

	errScalarEncoding = errors.New("p256: invalid scalar encoding")
	errPointEncoding  = errors.New("p256: invalid point encoding")
)

// Scalar wraps a circl P-256 scalar.
type Scalar struct {
	inner circl.Scalar
}

func newScalar() *Scalar {
	return &Scalar{inner: circl.P256.NewScalar()}
}

// Add sets s to a + b and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.inner.Sub(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Mul sets s to a * b and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Negate sets s to -a and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.Neg(a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1) and returns s. Zero has no inverse.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	aScalar := a.(*Scalar)
	if aScalar.IsZero() {
		return nil, errors.New("cannot invert zero scalar")
	}
	s.inner.Inv(aScalar.inner)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(a.(*Scalar).inner)
	return s
}

// SetUint64 sets s to v and returns s.
func (s *Scalar) SetUint64(v uint64) group.Scalar {
	s.inner.SetUint64(v)
	return s
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	enc, err := s.inner.MarshalBinary()
	if err != nil {
		panic("p256: " + err.Error())
	}
	if len(enc) == scalarSize {
		return enc
	}
	return new(big.Int).SetBytes(enc).FillBytes(make([]byte, scalarSize))
}

// SetBytes decodes a 32-byte big-endian scalar below the group order.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) != scalarSize {
		return nil, errScalarEncoding
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(order) >= 0 {
		return nil, errScalarEncoding
	}
	s.inner.SetBigInt(v)
	return s, nil
}

// Equal reports whether s and b are the same scalar.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.IsEqual(b.(*Scalar).inner)
}

// IsZero reports whether s is zero.
func (s *Scalar) IsZero() bool {
	return s.inner.IsEqual(circl.P256.NewScalar())
}

// Point wraps a circl P-256 element.
type Point struct {
	inner circl.Element
}

func newPoint() *Point {
	return &Point{inner: circl.P256.Identity()}
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	p.inner.Add(a.(*Point).inner, b.(*Point).inner)
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	negB := circl.P256.NewElement().Neg(b.(*Point).inner)
	p.inner.Add(a.(*Point).inner, negB)
	return p
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Neg(a.(*Point).inner)
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.inner.Mul(q.(*Point).inner, s.(*Scalar).inner)
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(a.(*Point).inner)
	return p
}

// Bytes returns the 33-byte compressed encoding of p.
func (p *Point) Bytes() []byte {
	if p.inner.IsIdentity() {
		return make([]byte, pointSize)
	}
	enc, err := p.inner.MarshalBinaryCompress()
	if err != nil {
		panic("p256: " + err.Error())
	}
	return enc
}

// SetBytes decodes a 33-byte compressed point or the all-zero identity.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != pointSize {
		return nil, errPointEncoding
	}
	if allZero(data) {
		p.inner.Set(circl.P256.Identity())
		return p, nil
	}
	if data[0] != 0x02 && data[0] != 0x03 {
		return nil, errPointEncoding
	}
	decoded := circl.P256.NewElement()
	if err := decoded.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if !bytes.Equal((&Point{inner: decoded}).Bytes(), data) {
		return nil, errPointEncoding
	}
	p.inner.Set(decoded)
	return p, nil
}

// Equal reports whether p and b are the same point.
func (p *Point) Equal(b group.Point) bool {
	return p.inner.IsEqual(b.(*Point).inner)
}

// IsIdentity reports whether p is the identity.
func (p *Point) IsIdentity() bool {
	return p.inner.IsIdentity()
}

func allZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Group implements [group.Group] for P-256.
type Group struct{}

// New returns the P-256 group.
func New() *Group {
	return &Group{}
}

// Name returns "p256".
func (g *Group) Name() string {
	return "p256"
}

// NewScalar returns a zero scalar.
func (g *Group) NewScalar() group.Scalar {
	return newScalar()
}

// NewPoint returns the identity.
func (g *Group) NewPoint() group.Point {
	return newPoint()
}

// Generator returns the P-256 base point.
func (g *Group) Generator() group.Point {
	return &Point{inner: circl.P256.Generator()}
}

// RandomScalar reads 48 bytes from r and reduces them modulo the order.
func (g *Group) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [wideSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf[:])
	v.Mod(v, order)
	s := newScalar()
	s.inner.SetBigInt(v)
	return s, nil
}

// ScalarSize returns 32.
func (g *Group) ScalarSize() int {
	return scalarSize
}

// PointSize returns 33.
func (g *Group) PointSize() int {
	return pointSize
}
