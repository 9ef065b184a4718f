package musig

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/f3rmion/musig/bjj"
	"github.com/f3rmion/musig/curves"
	"github.com/f3rmion/musig/group"
)

func newSigners(t *testing.T, m *MuSig, n int) []*Signer {
	t.Helper()
	signers := make([]*Signer, n)
	for i := range signers {
		s, err := m.NewSigner(rand.Reader)
		if err != nil {
			t.Fatalf("failed to create signer %d: %v", i, err)
		}
		signers[i] = s
	}
	return signers
}

func publicKeys(signers []*Signer) []group.Point {
	keys := make([]group.Point, len(signers))
	for i, s := range signers {
		keys[i] = s.PublicKey()
	}
	return keys
}

func TestSignVerify(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := New(g)
			for n := 1; n <= 5; n++ {
				t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
					signers := newSigners(t, m, n)
					msg := []byte("hello-world")

					sig, err := m.Sign(signers, msg)
					if err != nil {
						t.Fatalf("sign failed: %v", err)
					}
					if !m.Verify(sig, publicKeys(signers), msg) {
						t.Fatal("valid signature rejected")
					}
				})
			}
		})
	}
}

func TestVerifyRejectsAlteredInputs(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := New(g)
			signers := newSigners(t, m, 3)
			keys := publicKeys(signers)
			msg := []byte("hello-world")

			sig, err := m.Sign(signers, msg)
			if err != nil {
				t.Fatal(err)
			}

			t.Run("Message", func(t *testing.T) {
				if m.Verify(sig, keys, []byte("hello-worle")) {
					t.Error("signature verified over a different message")
				}
				flipped := append([]byte(nil), msg...)
				flipped[0] ^= 0x01
				if m.Verify(sig, keys, flipped) {
					t.Error("signature verified after a bit flip")
				}
			})

			t.Run("Keys", func(t *testing.T) {
				if m.Verify(sig, keys[:2], msg) {
					t.Error("signature verified under a subset of keys")
				}
				others := publicKeys(newSigners(t, m, 3))
				if m.Verify(sig, others, msg) {
					t.Error("signature verified under unrelated keys")
				}
			})

			t.Run("S", func(t *testing.T) {
				s := g.NewScalar().Add(sig.S(), g.NewScalar().SetUint64(1))
				if m.Verify(NewSignature(g, s, sig.R()), keys, msg) {
					t.Error("signature verified with altered s")
				}
			})

			t.Run("R", func(t *testing.T) {
				R := g.NewPoint().Add(sig.R(), g.Generator())
				if m.Verify(NewSignature(g, sig.S(), R), keys, msg) {
					t.Error("signature verified with altered R")
				}
			})

			t.Run("IdentityR", func(t *testing.T) {
				if m.Verify(NewSignature(g, sig.S(), g.NewPoint()), keys, msg) {
					t.Error("signature verified with identity R")
				}
			})

			t.Run("IdentityKey", func(t *testing.T) {
				if m.VerifyAggregate(sig, g.NewPoint(), msg) {
					t.Error("signature verified under identity aggregate key")
				}
			})
		})
	}
}

func TestKeyOrder(t *testing.T) {
	g := curves.All()[0]

	t.Run("Sorted", func(t *testing.T) {
		m := New(g)
		keys := publicKeys(newSigners(t, m, 4))
		reversed := []group.Point{keys[3], keys[2], keys[1], keys[0]}

		a, err := m.AggregateKeys(keys)
		if err != nil {
			t.Fatal(err)
		}
		b, err := m.AggregateKeys(reversed)
		if err != nil {
			t.Fatal(err)
		}
		if !a.Key.Equal(b.Key) {
			t.Error("sorted aggregation depends on input order")
		}
		// Coefficients follow the key, not its position.
		if !a.CoefficientFor(0).Equal(b.CoefficientFor(3)) {
			t.Error("coefficient of a key changed with its position")
		}
	})

	t.Run("Given", func(t *testing.T) {
		m := New(g, WithKeyOrder(KeyOrderGiven))
		keys := publicKeys(newSigners(t, m, 4))
		swapped := []group.Point{keys[1], keys[0], keys[2], keys[3]}

		a, err := m.AggregateKeys(keys)
		if err != nil {
			t.Fatal(err)
		}
		b, err := m.AggregateKeys(swapped)
		if err != nil {
			t.Fatal(err)
		}
		if a.Key.Equal(b.Key) {
			t.Error("given-order aggregation ignored a permutation")
		}
	})

	t.Run("SignGiven", func(t *testing.T) {
		m := New(g, WithKeyOrder(KeyOrderGiven))
		signers := newSigners(t, m, 3)
		msg := []byte("ordered")

		sig, err := m.Sign(signers, msg)
		if err != nil {
			t.Fatal(err)
		}
		keys := publicKeys(signers)
		if !m.Verify(sig, keys, msg) {
			t.Error("signature rejected under the signing order")
		}
		if m.Verify(sig, []group.Point{keys[2], keys[1], keys[0]}, msg) {
			t.Error("signature accepted under a different key order")
		}
	})

	t.Run("Parse", func(t *testing.T) {
		for _, o := range []KeyOrder{KeyOrderSorted, KeyOrderGiven} {
			got, err := ParseKeyOrder(o.String())
			if err != nil || got != o {
				t.Errorf("ParseKeyOrder(%q) = %v, %v", o.String(), got, err)
			}
		}
		if _, err := ParseKeyOrder("random"); err == nil {
			t.Error("expected error for unknown key order")
		}
	})
}

func TestAggregateKeysRejects(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := New(g)

			if _, err := m.AggregateKeys(nil); !errors.Is(err, ErrNoKeys) {
				t.Errorf("empty list: got %v, want ErrNoKeys", err)
			}

			valid := publicKeys(newSigners(t, m, 3))
			keys := []group.Point{valid[0], valid[1], g.NewPoint(), valid[2]}
			_, err := m.AggregateKeys(keys)
			if !errors.Is(err, ErrIdentityKey) {
				t.Fatalf("identity key: got %v, want ErrIdentityKey", err)
			}
			var keyErr *KeyError
			if !errors.As(err, &keyErr) || keyErr.Index != 2 {
				t.Errorf("identity key: got %v, want index 2", err)
			}
		})
	}
}

func TestManualRounds(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := New(g)
			signers := newSigners(t, m, 3)
			msg := []byte("manual")

			agg, err := m.AggregateKeys(publicKeys(signers))
			if err != nil {
				t.Fatal(err)
			}

			commitments := make([]group.Scalar, len(signers))
			nonces := make([]group.Point, len(signers))
			for i, s := range signers {
				if commitments[i], err = s.Commitment(); err != nil {
					t.Fatal(err)
				}
				if nonces[i], err = s.NoncePoint(); err != nil {
					t.Fatal(err)
				}
			}
			if err := m.VerifyOpenings(commitments, nonces); err != nil {
				t.Fatalf("openings rejected: %v", err)
			}
			if err := m.VerifyOpenings(commitments[:2], nonces); !errors.Is(err, ErrContributionCount) {
				t.Errorf("short commitments: got %v, want ErrContributionCount", err)
			}

			R, err := m.AggregateNonces(nonces)
			if err != nil {
				t.Fatal(err)
			}
			c := m.Challenge(agg.Key, R, msg)

			partials := make([]group.Scalar, len(signers))
			for i, s := range signers {
				a := agg.CoefficientFor(i)
				if partials[i], err = s.PartialSignature(c, a); err != nil {
					t.Fatal(err)
				}
				if !m.VerifyPartial(partials[i], nonces[i], s.PublicKey(), a, c) {
					t.Errorf("partial %d rejected", i)
				}
			}
			if m.VerifyPartial(partials[0], nonces[1], signers[0].PublicKey(), agg.CoefficientFor(0), c) {
				t.Error("partial accepted against the wrong nonce")
			}

			sig := NewSignature(g, m.SumPartials(partials), R)
			if !m.VerifyAggregate(sig, agg.Key, msg) {
				t.Error("assembled signature rejected")
			}
		})
	}
}

func TestSeparateSessionsDiffer(t *testing.T) {
	m := New(curves.All()[0])
	signers := newSigners(t, m, 2)
	keys := publicKeys(signers)
	msg := []byte("same message")

	first, err := m.Sign(signers, msg)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range signers {
		if err := s.Refresh(rand.Reader); err != nil {
			t.Fatal(err)
		}
	}
	second, err := m.Sign(signers, msg)
	if err != nil {
		t.Fatal(err)
	}

	if first.R().Equal(second.R()) {
		t.Error("two sessions produced the same nonce")
	}
	if !m.Verify(first, keys, msg) || !m.Verify(second, keys, msg) {
		t.Error("signature from a refreshed session rejected")
	}
}

func TestNonceLifecycle(t *testing.T) {
	m := New(curves.All()[0])

	t.Run("ConsumedBySign", func(t *testing.T) {
		signers := newSigners(t, m, 2)
		if _, err := m.Sign(signers, []byte("once")); err != nil {
			t.Fatal(err)
		}
		for i, s := range signers {
			if s.HasNonce() {
				t.Errorf("signer %d still holds its nonce", i)
			}
		}
		if _, err := m.Sign(signers, []byte("twice")); !errors.Is(err, ErrNonceConsumed) {
			t.Errorf("got %v, want ErrNonceConsumed", err)
		}
	})

	t.Run("ConsumedByPartial", func(t *testing.T) {
		s := newSigners(t, m, 1)[0]
		c := m.group.NewScalar().SetUint64(7)
		a := m.group.NewScalar().SetUint64(1)
		if _, err := s.PartialSignature(c, a); err != nil {
			t.Fatal(err)
		}
		if _, err := s.PartialSignature(c, a); !errors.Is(err, ErrNonceConsumed) {
			t.Errorf("got %v, want ErrNonceConsumed", err)
		}
		if _, err := s.Commitment(); !errors.Is(err, ErrNonceConsumed) {
			t.Errorf("commitment after use: got %v, want ErrNonceConsumed", err)
		}
	})

	t.Run("Discard", func(t *testing.T) {
		s := newSigners(t, m, 1)[0]
		s.Discard()
		if _, err := s.NoncePoint(); !errors.Is(err, ErrNonceConsumed) {
			t.Errorf("got %v, want ErrNonceConsumed", err)
		}
		if err := s.Refresh(rand.Reader); err != nil {
			t.Fatal(err)
		}
		if !s.HasNonce() {
			t.Error("refresh did not install a nonce")
		}
	})

	t.Run("FailedSessionErasesTakenNonces", func(t *testing.T) {
		signers := newSigners(t, m, 2)
		signers[1].Discard()
		if _, err := m.NewSession(signers, nil); !errors.Is(err, ErrNonceConsumed) {
			t.Fatalf("got %v, want ErrNonceConsumed", err)
		}
		if signers[0].HasNonce() {
			t.Error("nonce taken by a failed session was returned to the signer")
		}
	})
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestDegenerateRandomness(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := New(g)
			secret, err := group.RandomNonZeroScalar(g, rand.Reader)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := m.NewSignerFromSecret(secret, zeroReader{}); !errors.Is(err, ErrDegenerateNonce) {
				t.Errorf("got %v, want ErrDegenerateNonce", err)
			}
			if _, err := m.NewSignerFromSecret(g.NewScalar(), rand.Reader); !errors.Is(err, ErrZeroSecret) {
				t.Errorf("got %v, want ErrZeroSecret", err)
			}

			s, err := m.NewSignerFromSecret(secret, rand.Reader)
			if err != nil {
				t.Fatal(err)
			}
			before, _ := s.NoncePoint()
			if err := s.Refresh(zeroReader{}); !errors.Is(err, ErrDegenerateNonce) {
				t.Errorf("refresh: got %v, want ErrDegenerateNonce", err)
			}
			after, err := s.NoncePoint()
			if err != nil || !after.Equal(before) {
				t.Error("failed refresh replaced the existing nonce")
			}
		})
	}
}

func TestSignatureEncoding(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := New(g)
			signers := newSigners(t, m, 2)
			msg := []byte("encode me")

			sig, err := m.Sign(signers, msg)
			if err != nil {
				t.Fatal(err)
			}
			b := sig.Bytes()
			if len(b) != g.ScalarSize()+g.PointSize() {
				t.Fatalf("encoded length %d, want %d", len(b), g.ScalarSize()+g.PointSize())
			}

			parsed, err := m.ParseSignature(b)
			if err != nil {
				t.Fatal(err)
			}
			if !m.Verify(parsed, publicKeys(signers), msg) {
				t.Error("parsed signature rejected")
			}

			if _, err := m.ParseSignature(b[1:]); !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("short input: got %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestParseSignatureRejectsAliasedNonce(t *testing.T) {
	g := &bjj.BJJ{}
	m := New(g)
	signers := newSigners(t, m, 3)
	msg := []byte("hello-world")

	sig, err := m.Sign(signers, msg)
	if err != nil {
		t.Fatal(err)
	}
	enc := sig.Bytes()
	if _, err := m.ParseSignature(enc); err != nil {
		t.Fatalf("canonical signature rejected: %v", err)
	}

	// R is y little-endian with the x sign in the top bit. Adding the field
	// modulus to y names the same point.
	ss := g.ScalarSize()
	rEnc := enc[ss:]
	sign := rEnc[len(rEnc)-1] & 0x80
	be := slices.Clone(rEnc)
	be[len(be)-1] &^= 0x80
	slices.Reverse(be)
	y := new(big.Int).SetBytes(be)
	y.Add(y, fr.Modulus())
	if y.BitLen() >= 8*len(rEnc) {
		t.Fatal("y+q does not fit under the sign bit")
	}
	alias := y.FillBytes(make([]byte, len(rEnc)))
	slices.Reverse(alias)
	alias[len(alias)-1] |= sign

	forged := append(slices.Clone(enc[:ss]), alias...)
	if bytes.Equal(forged, enc) {
		t.Fatal("alias equals the canonical encoding")
	}
	if _, err := m.ParseSignature(forged); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("aliased nonce: got %v, want ErrInvalidSignature", err)
	}
	if !m.Verify(sig, publicKeys(signers), msg) {
		t.Error("original signature rejected")
	}
}

