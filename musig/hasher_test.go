package musig

import (
	"crypto/sha256"
	"testing"

	"github.com/f3rmion/musig/curves"
)

func TestFoldBigEndian(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			got := foldBigEndian(g, []byte{0x01, 0x02})
			if !got.Equal(g.NewScalar().SetUint64(0x0102)) {
				t.Error("digest {01 02} did not fold to 258")
			}
			if !foldBigEndian(g, nil).IsZero() {
				t.Error("empty digest did not fold to zero")
			}
		})
	}
}

func TestHasherDomainSeparation(t *testing.T) {
	g := curves.All()[0]
	hashers := map[string]Hasher{
		"sha256":  &SHA256Hasher{},
		"sha3":    &SHA3Hasher{},
		"blake2b": NewBlake2bHasher(),
	}
	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			a := h.HashToScalar(g, TagAgg, []byte("x"))
			if !a.Equal(h.HashToScalar(g, TagAgg, []byte("x"))) {
				t.Error("hash is not deterministic")
			}
			if a.Equal(h.HashToScalar(g, TagCom, []byte("x"))) {
				t.Error("tags do not separate domains")
			}
			if a.Equal(h.HashToScalar(g, TagAgg, []byte("y"))) {
				t.Error("different inputs collide")
			}
		})
	}

	t.Run("Blake2bPrefix", func(t *testing.T) {
		a := NewBlake2bHasher().HashToScalar(g, TagSig, []byte("x"))
		b := (&Blake2bHasher{Prefix: "other"}).HashToScalar(g, TagSig, []byte("x"))
		if a.Equal(b) {
			t.Error("prefix does not separate domains")
		}
	})
}

func TestSHA256HasherMatchesDigest(t *testing.T) {
	g := curves.All()[0]
	d := sha256.Sum256([]byte("sig" + "part1" + "part2"))
	want := foldBigEndian(g, d[:])
	got := (&SHA256Hasher{}).HashToScalar(g, TagSig, []byte("part1"), []byte("part2"))
	if !got.Equal(want) {
		t.Error("hash is not SHA-256 over tag followed by parts")
	}
}

func TestHasherByName(t *testing.T) {
	for _, name := range []string{"", "sha256", "sha3", "sha3-256", "blake2b", "blake2b-256"} {
		if _, err := HasherByName(name); err != nil {
			t.Errorf("HasherByName(%q): %v", name, err)
		}
	}
	if _, err := HasherByName("md5"); err == nil {
		t.Error("expected error for unknown hasher")
	}
}

func TestSignWithEveryHasher(t *testing.T) {
	g := curves.All()[0]
	for _, name := range []string{"sha256", "sha3", "blake2b"} {
		t.Run(name, func(t *testing.T) {
			h, err := HasherByName(name)
			if err != nil {
				t.Fatal(err)
			}
			m := New(g, WithHasher(h))
			signers := newSigners(t, m, 3)
			msg := []byte("hash agility")

			sig, err := m.Sign(signers, msg)
			if err != nil {
				t.Fatal(err)
			}
			if !m.Verify(sig, publicKeys(signers), msg) {
				t.Error("signature rejected")
			}
			if name != "sha256" && New(g).Verify(sig, publicKeys(signers), msg) {
				t.Error("signature verified under a different hasher")
			}
		})
	}
}
