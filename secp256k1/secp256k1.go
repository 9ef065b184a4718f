// Package secp256k1 implements [group.Group] for the secp256k1 curve using
// the decred secp256k1 package.
//
// Scalars are 32-byte big-endian integers below the curve order N. Points
// use the 33-byte SEC1 compressed form; the point at infinity, which has no
// SEC1 compressed encoding, is written as 33 zero bytes.
package secp256k1

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/f3rmion/musig/group"
)

const (
	scalarSize = 32
	pointSize  = 33
	wideSize   = 64
)

var (
	errScalarOverflow = errors.New("secp256k1: scalar not below curve order")
	errNonCanonical   = errors.New("secp256k1: non-canonical point encoding")
)

// Scalar wraps a value modulo the secp256k1 group order.
type Scalar struct {
	inner secp256k1.ModNScalar
}

// Add sets s to a + b and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	var negB secp256k1.ModNScalar
	negB.NegateVal(&b.(*Scalar).inner)
	s.inner.Add2(&a.(*Scalar).inner, &negB)
	return s
}

// Mul sets s to a * b and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Negate sets s to -a and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.NegateVal(&a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1) and returns s. Zero has no inverse.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	aScalar := a.(*Scalar)
	if aScalar.IsZero() {
		return nil, errors.New("cannot invert zero scalar")
	}
	s.inner.InverseValNonConst(&aScalar.inner)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(&a.(*Scalar).inner)
	return s
}

// SetUint64 sets s to v and returns s.
func (s *Scalar) SetUint64(v uint64) group.Scalar {
	var buf [scalarSize]byte
	binary.BigEndian.PutUint64(buf[scalarSize-8:], v)
	s.inner.SetBytes(&buf)
	return s
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	return b[:]
}

// SetBytes decodes a 32-byte big-endian scalar below the curve order.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) != scalarSize {
		return nil, errors.New("secp256k1: invalid scalar length")
	}
	var v secp256k1.ModNScalar
	if overflow := v.SetByteSlice(data); overflow {
		return nil, errScalarOverflow
	}
	s.inner.Set(&v)
	return s, nil
}

// Equal reports whether s and b are the same scalar.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equals(&b.(*Scalar).inner)
}

// IsZero reports whether s is zero.
func (s *Scalar) IsZero() bool {
	return s.inner.IsZero()
}

// Point is a secp256k1 point in Jacobian coordinates.
type Point struct {
	inner secp256k1.JacobianPoint
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	var sum secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.(*Point).inner, &b.(*Point).inner, &sum)
	p.inner.Set(&sum)
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	var negB Point
	negB.Negate(b)
	return p.Add(a, &negB)
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	var neg secp256k1.JacobianPoint
	neg.Set(&a.(*Point).inner)
	neg.ToAffine()
	neg.Y.Negate(1).Normalize()
	p.inner.Set(&neg)
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	var product secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.(*Scalar).inner, &q.(*Point).inner, &product)
	p.inner.Set(&product)
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(&a.(*Point).inner)
	return p
}

// Bytes returns the 33-byte compressed encoding of p.
func (p *Point) Bytes() []byte {
	if p.IsIdentity() {
		return make([]byte, pointSize)
	}
	var affine secp256k1.JacobianPoint
	affine.Set(&p.inner)
	affine.ToAffine()
	return secp256k1.NewPublicKey(&affine.X, &affine.Y).SerializeCompressed()
}

// SetBytes decodes a 33-byte compressed point or the all-zero identity.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != pointSize {
		return nil, errors.New("secp256k1: invalid point length")
	}
	if isZeroBytes(data) {
		p.inner = secp256k1.JacobianPoint{}
		return p, nil
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, err
	}
	var decoded Point
	pub.AsJacobian(&decoded.inner)
	if !bytes.Equal(decoded.Bytes(), data) {
		return nil, errNonCanonical
	}
	p.inner.Set(&decoded.inner)
	return p, nil
}

// Equal reports whether p and b are the same point.
func (p *Point) Equal(b group.Point) bool {
	other := b.(*Point)
	if p.IsIdentity() || other.IsIdentity() {
		return p.IsIdentity() == other.IsIdentity()
	}
	var x, y secp256k1.JacobianPoint
	x.Set(&p.inner)
	y.Set(&other.inner)
	x.ToAffine()
	y.ToAffine()
	return x.X.Equals(&y.X) && x.Y.Equals(&y.Y)
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	x, y, z := p.inner.X, p.inner.Y, p.inner.Z
	x.Normalize()
	y.Normalize()
	z.Normalize()
	return z.IsZero() || (x.IsZero() && y.IsZero())
}

func isZeroBytes(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Group implements [group.Group] for secp256k1.
type Group struct{}

// New returns the secp256k1 group.
func New() *Group {
	return &Group{}
}

// Name returns "secp256k1".
func (g *Group) Name() string {
	return "secp256k1"
}

// NewScalar returns a zero scalar.
func (g *Group) NewScalar() group.Scalar {
	return &Scalar{}
}

// NewPoint returns the point at infinity.
func (g *Group) NewPoint() group.Point {
	return &Point{}
}

// Generator returns the secp256k1 base point.
func (g *Group) Generator() group.Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	var p Point
	secp256k1.ScalarBaseMultNonConst(&one, &p.inner)
	return &p
}

// RandomScalar reads 64 bytes from r and reduces them modulo N.
func (g *Group) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [wideSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	// hi*2^256 + lo, with 2^256 computed as (2^128)^2 to stay inside ModNScalar.
	var hi, lo, shift secp256k1.ModNScalar
	hi.SetByteSlice(buf[:32])
	lo.SetByteSlice(buf[32:])
	var shiftBytes [scalarSize]byte
	shiftBytes[scalarSize-17] = 1
	shift.SetBytes(&shiftBytes)
	shift.Square()

	s := &Scalar{}
	s.inner.Mul2(&hi, &shift).Add(&lo)
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
