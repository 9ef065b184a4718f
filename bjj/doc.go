// Package bjj provides a Baby Jubjub elliptic curve implementation of the
// [group.Group] interface.
//
// Baby Jubjub is a twisted Edwards curve defined over the scalar field of
// BN254 (also known as alt_bn128). It is commonly used in zero-knowledge
// proof systems, which makes it a good fit for aggregate signatures that
// are later checked inside a circuit.
//
// This package wraps the Baby Jubjub implementation from gnark-crypto.
//
// # Curve Parameters
//
// Baby Jubjub is defined by the equation:
//
//	a*x^2 + y^2 = 1 + d*x^2*y^2
//
// where a = 168700 and d = 168696 over the BN254 scalar field.
//
// The curve has a prime-order subgroup of size:
//
//	2736030358979909402780800718157159386076813972158567259200215660948447373041
//
// # Usage
//
//	g := &bjj.BJJ{}
//	m := musig.New(g)
//
// # Encoding
//
// Scalars are 32-byte big-endian integers below the subgroup order. Points
// use gnark-crypto's 32-byte compressed form. Decoding rejects points that
// are on the curve but outside the prime-order subgroup.
package bjj
