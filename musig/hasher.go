package musig

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/f3rmion/musig/group"
)

// Domain separation tags for the three protocol hashes.
const (
	TagAgg = "agg" // key aggregation coefficients
	TagCom = "com" // nonce commitments
	TagSig = "sig" // signature challenge
)

// Hasher is the hash oracle: it maps a domain tag and an ordered list of
// byte strings to a scalar of g.
//
// Implementations hash the tag followed by every part, then fold the digest
// into a scalar as a big-endian base-256 integer (acc = acc*256 + byte).
// The mapping is slightly biased for groups whose order is below 2^256; it
// is meant for Fiat-Shamir challenges, not as a uniform hash-to-field.
type Hasher interface {
	HashToScalar(g group.Group, tag string, parts ...[]byte) group.Scalar
}

// SHA256Hasher implements Hasher using SHA-256.
// This is the default hasher.
type SHA256Hasher struct{}

// HashToScalar implements Hasher.
func (h *SHA256Hasher) HashToScalar(g group.Group, tag string, parts ...[]byte) group.Scalar {
	return digestToScalar(g, sha256.New(), []byte(tag), parts)
}

// SHA3Hasher implements Hasher using SHA3-256.
type SHA3Hasher struct{}

// HashToScalar implements Hasher.
func (h *SHA3Hasher) HashToScalar(g group.Group, tag string, parts ...[]byte) group.Scalar {
	return digestToScalar(g, sha3.New256(), []byte(tag), parts)
}

// Blake2bHasher implements Hasher using Blake2b-256 with an extra prefix
// written before the tag.
type Blake2bHasher struct {
	// Prefix is the domain separation prefix.
	// Default: "MUSIG-BLAKE2B256-v1"
	Prefix string
}

// NewBlake2bHasher creates a Blake2bHasher with the default prefix.
func NewBlake2bHasher() *Blake2bHasher {
	return &Blake2bHasher{
		Prefix: "MUSIG-BLAKE2B256-v1",
	}
}

// HashToScalar implements Hasher.
func (h *Blake2bHasher) HashToScalar(g group.Group, tag string, parts ...[]byte) group.Scalar {
	d, err := blake2b.New256(nil)
	if err != nil {
		// Only returned for keys longer than 64 bytes.
		panic(err)
	}
	d.Write([]byte(h.Prefix))
	return digestToScalar(g, d, []byte(tag), parts)
}

// HasherByName returns the hasher for "sha256", "sha3" or "blake2b".
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", "sha256":
		return &SHA256Hasher{}, nil
	case "sha3", "sha3-256":
		return &SHA3Hasher{}, nil
	case "blake2b", "blake2b-256":
		return NewBlake2bHasher(), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}

func digestToScalar(g group.Group, d hash.Hash, tag []byte, parts [][]byte) group.Scalar {
	d.Write(tag)
	for _, p := range parts {
		d.Write(p)
	}
	return foldBigEndian(g, d.Sum(nil))
}

// foldBigEndian reduces digest into g's scalar field, most significant
// byte first.
func foldBigEndian(g group.Group, digest []byte) group.Scalar {
	base := g.NewScalar().SetUint64(256)
	acc := g.NewScalar()
	for _, b := range digest {
		acc = g.NewScalar().Mul(acc, base)
		acc = g.NewScalar().Add(acc, g.NewScalar().SetUint64(uint64(b)))
	}
	return acc
}
