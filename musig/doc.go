// Package musig implements MuSig multi-signatures over an arbitrary prime
// order group.
//
// MuSig lets n signers produce one Schnorr signature that verifies under an
// aggregate public key X, without any trusted dealer. The scheme is written
// against the [group.Group] interface, so the same code runs over every
// curve in this module.
//
// # Key Aggregation
//
// Every signer's key pk_i gets the coefficient a_i = Hash("agg", pk_1..pk_n,
// pk_i) and the aggregate key is X = sum(a_i * pk_i). With the default
// [KeyOrderSorted] the key list is sorted by encoding before hashing, so X
// does not depend on the order in which keys were collected.
//
// # Signing
//
// Signing takes three rounds:
//
//  1. Each signer commits to its nonce point R_i with t_i = Hash("com", R_i).
//  2. Once every commitment is known, the nonces are revealed and checked
//     against their commitments. R = sum(R_i).
//  3. With c = Hash("sig", X, R, message), each signer returns
//     s_i = r_i + c*a_i*x_i and the signature is (sum(s_i), R).
//
// [MuSig.NewSession] runs the rounds in process. Each round returns a new
// handle and invalidates the previous one, so nonces cannot be revealed
// before every commitment is fixed and no handle can be replayed. A nonce
// leaving a [Signer] is owned by exactly one session and is erased when that
// session finishes or aborts.
//
// # Example
//
//	m := musig.New(ristretto.New())
//	alice, _ := m.NewSigner(rand.Reader)
//	bob, _ := m.NewSigner(rand.Reader)
//
//	sig, _ := m.Sign([]*musig.Signer{alice, bob}, []byte("hello-world"))
//	keys := []group.Point{alice.PublicKey(), bob.PublicKey()}
//	ok := m.Verify(sig, keys, []byte("hello-world"))
//
// The distributed variant, where each signer runs in its own process, lives
// in package session.
package musig
