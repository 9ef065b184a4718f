// Package grouptest provides a conformance suite for [group.Group]
// implementations.
package grouptest

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/f3rmion/musig/group"
)

// Run exercises the scalar and point arithmetic of g.
func Run(t *testing.T, g group.Group) {
	t.Run("Scalar", func(t *testing.T) { testScalar(t, g) })
	t.Run("Point", func(t *testing.T) { testPoint(t, g) })
}

func randomScalar(t *testing.T, g group.Group) group.Scalar {
	t.Helper()
	s, err := group.RandomNonZeroScalar(g, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testScalar(t *testing.T, g group.Group) {
	t.Run("AddSub", func(t *testing.T) {
		a := randomScalar(t, g)
		b := randomScalar(t, g)

		sum := g.NewScalar().Add(a, b)
		diff := g.NewScalar().Sub(sum, b)

		if !diff.Equal(a) {
			t.Error("(a+b)-b != a")
		}
	})

	t.Run("MulInvert", func(t *testing.T) {
		a := randomScalar(t, g)
		aInv, err := g.NewScalar().Invert(a)
		if err != nil {
			t.Fatal(err)
		}

		product := g.NewScalar().Mul(a, aInv)
		one := g.NewScalar().SetUint64(1)
		if !product.Equal(one) {
			t.Error("a*a^-1 != 1")
		}
	})

	t.Run("InvertZeroFails", func(t *testing.T) {
		_, err := g.NewScalar().Invert(g.NewScalar())
		if err == nil {
			t.Error("expected error inverting zero")
		}
	})

	t.Run("Negate", func(t *testing.T) {
		a := randomScalar(t, g)
		negA := g.NewScalar().Negate(a)

		if !g.NewScalar().Add(a, negA).IsZero() {
			t.Error("a + (-a) != 0")
		}
		if a.Equal(negA) {
			t.Error("a should not equal -a")
		}
	})

	t.Run("SetUint64", func(t *testing.T) {
		two := g.NewScalar().SetUint64(2)
		one := g.NewScalar().SetUint64(1)
		if !g.NewScalar().Add(one, one).Equal(two) {
			t.Error("1+1 != 2")
		}
		x := g.NewScalar().SetUint64(256)
		y := g.NewScalar().Mul(g.NewScalar().SetUint64(16), g.NewScalar().SetUint64(16))
		if !x.Equal(y) {
			t.Error("16*16 != 256")
		}
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		a := randomScalar(t, g)

		enc := a.Bytes()
		if len(enc) != g.ScalarSize() {
			t.Fatalf("scalar encoding has %d bytes, want %d", len(enc), g.ScalarSize())
		}
		restored, err := g.NewScalar().SetBytes(enc)
		if err != nil {
			t.Fatal(err)
		}
		if !restored.Equal(a) {
			t.Error("scalar bytes roundtrip failed")
		}
	})

	t.Run("SetBytesWrongLength", func(t *testing.T) {
		if _, err := g.NewScalar().SetBytes(make([]byte, g.ScalarSize()+1)); err == nil {
			t.Error("expected error for oversized scalar encoding")
		}
	})

	t.Run("NewScalarIsZero", func(t *testing.T) {
		if !g.NewScalar().IsZero() {
			t.Error("new scalar should be zero")
		}
	})

	t.Run("Set", func(t *testing.T) {
		a := randomScalar(t, g)
		b := g.NewScalar().Set(a)
		if !a.Equal(b) {
			t.Error("copied scalar should equal original")
		}
	})
}

func testPoint(t *testing.T, g group.Group) {
	t.Run("AddSub", func(t *testing.T) {
		P := group.BaseMult(g, randomScalar(t, g))
		Q := group.BaseMult(g, randomScalar(t, g))

		sum := g.NewPoint().Add(P, Q)
		diff := g.NewPoint().Sub(sum, Q)

		if !diff.Equal(P) {
			t.Error("(P+Q)-Q != P")
		}
	})

	t.Run("Negate", func(t *testing.T) {
		P := group.BaseMult(g, randomScalar(t, g))
		negP := g.NewPoint().Negate(P)

		if !g.NewPoint().Add(P, negP).IsIdentity() {
			t.Error("P + (-P) != identity")
		}
	})

	t.Run("Distributive", func(t *testing.T) {
		a := randomScalar(t, g)
		b := randomScalar(t, g)

		lhs := group.BaseMult(g, g.NewScalar().Add(a, b))
		rhs := g.NewPoint().Add(group.BaseMult(g, a), group.BaseMult(g, b))
		if !lhs.Equal(rhs) {
			t.Error("(a+b)G != aG + bG")
		}
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		P := group.BaseMult(g, randomScalar(t, g))

		enc := P.Bytes()
		if len(enc) != g.PointSize() {
			t.Fatalf("point encoding has %d bytes, want %d", len(enc), g.PointSize())
		}
		restored, err := g.NewPoint().SetBytes(enc)
		if err != nil {
			t.Fatal(err)
		}
		if !restored.Equal(P) {
			t.Error("point bytes roundtrip failed")
		}
	})

	t.Run("IdentityRoundtrip", func(t *testing.T) {
		enc := g.NewPoint().Bytes()
		if len(enc) != g.PointSize() {
			t.Fatalf("identity encoding has %d bytes, want %d", len(enc), g.PointSize())
		}
		restored, err := g.NewPoint().SetBytes(enc)
		if err != nil {
			t.Fatal(err)
		}
		if !restored.IsIdentity() {
			t.Error("decoded identity is not the identity")
		}
	})

	t.Run("SetBytesWrongLength", func(t *testing.T) {
		enc := g.Generator().Bytes()
		if _, err := g.NewPoint().SetBytes(enc[:len(enc)-1]); err == nil {
			t.Error("short point encoding should be rejected")
		}
		if _, err := g.NewPoint().SetBytes(append(enc, 0)); err == nil {
			t.Error("long point encoding should be rejected")
		}
	})

	t.Run("SetBytesIsCanonical", func(t *testing.T) {
		enc := group.BaseMult(g, randomScalar(t, g)).Bytes()
		for i := range enc {
			for _, bit := range []byte{0x01, 0x80} {
				data := append([]byte(nil), enc...)
				data[i] ^= bit
				P, err := g.NewPoint().SetBytes(data)
				if err != nil {
					continue
				}
				if !bytes.Equal(P.Bytes(), data) {
					t.Fatalf("encoding %x decoded to a point encoded as %x", data, P.Bytes())
				}
			}
		}
	})

	t.Run("IsIdentity", func(t *testing.T) {
		if !g.NewPoint().IsIdentity() {
			t.Error("new point should be identity")
		}
		if g.Generator().IsIdentity() {
			t.Error("generator should not be identity")
		}
		zero := g.NewScalar()
		if !g.NewPoint().ScalarMult(zero, g.Generator()).IsIdentity() {
			t.Error("0*G should be identity")
		}
	})

	t.Run("Set", func(t *testing.T) {
		P := group.BaseMult(g, randomScalar(t, g))
		if !g.NewPoint().Set(P).Equal(P) {
			t.Error("copied point should equal original")
		}
	})
}

// RejectsPointEncodings checks that every vector fails to decode. Adapters
// pass encodings outside the canonical set, such as unreduced coordinates
// or a sign bit on a zero coordinate.
func RejectsPointEncodings(t *testing.T, g group.Group, vectors map[string][]byte) {
	t.Run("SetBytesRejectsNonCanonical", func(t *testing.T) {
		for name, data := range vectors {
			if P, err := g.NewPoint().SetBytes(data); err == nil {
				t.Errorf("%s: %x accepted, re-encodes as %x", name, data, P.Bytes())
			}
		}
	})
}
