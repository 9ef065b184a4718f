package bjj

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	"github.com/f3rmion/musig/group/grouptest"
)

func TestConformance(t *testing.T) {
	grouptest.Run(t, &BJJ{})
}

func TestScalarRejectsOrder(t *testing.T) {
	g := &BJJ{}
	data := curveOrder.FillBytes(make([]byte, scalarSize))
	if _, err := g.NewScalar().SetBytes(data); err == nil {
		t.Error("scalar equal to the curve order should be rejected")
	}

	below := new(big.Int).Sub(curveOrder, big.NewInt(1))
	if _, err := g.NewScalar().SetBytes(below.FillBytes(make([]byte, scalarSize))); err != nil {
		t.Errorf("order-1 should decode: %v", err)
	}
}

func TestPointRejectsSmallSubgroup(t *testing.T) {
	// (0, -1) is on the curve and has order 2.
	var p twistededwards.PointAffine
	p.X.SetZero()
	p.Y.SetOne()
	p.Y.Neg(&p.Y)
	if !p.IsOnCurve() {
		t.Fatal("(0, -1) should be on the curve")
	}

	enc := p.Bytes()
	g := &BJJ{}
	if _, err := g.NewPoint().SetBytes(enc[:]); err == nil {
		t.Error("low-order point should be rejected")
	}
}

func TestRandomScalarShortReader(t *testing.T) {
	g := &BJJ{}
	if _, err := g.RandomScalar(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("expected error from exhausted reader")
	}
}

// encodeY lays y out little-endian with the x sign in the top bit of the
// last byte.
func encodeY(y *big.Int, negative bool) []byte {
	out := y.FillBytes(make([]byte, pointSize))
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if negative {
		out[pointSize-1] |= 0x80
	}
	return out
}

func TestPointRejectsNonCanonical(t *testing.T) {
	g := &BJJ{}
	gen := g.Generator().(*Point)

	var y big.Int
	gen.inner.Y.BigInt(&y)
	negative := gen.Bytes()[pointSize-1]&0x80 != 0
	if !bytes.Equal(encodeY(&y, negative), gen.Bytes()) {
		t.Fatal("encodeY does not reproduce the generator encoding")
	}

	unreduced := new(big.Int).Add(&y, fr.Modulus())
	if unreduced.BitLen() >= 8*pointSize {
		t.Fatal("y+q does not fit the encoding")
	}

	// gnark reduces y mod q, so both decode to the generator.
	var alias twistededwards.PointAffine
	if err := alias.Unmarshal(encodeY(unreduced, negative)); err != nil || !alias.Equal(&gen.inner) {
		t.Fatal("y+q should alias the generator in the underlying decoder")
	}

	grouptest.RejectsPointEncodings(t, g, map[string][]byte{
		"generator y+q":          encodeY(unreduced, negative),
		"identity with sign bit": encodeY(big.NewInt(1), true),
		"trailing byte":          append(gen.Bytes(), 0),
	})
}
