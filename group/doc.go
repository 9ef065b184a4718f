// Package group defines abstract interfaces for the prime-order groups
// the MuSig and Schnorr constructions are generic over.
//
// This package provides three core interfaces:
//
//   - [Scalar]: Elements of the scalar field (integers modulo the group order)
//   - [Point]: Elements of the group (points on an elliptic curve)
//   - [Group]: Factory and utility methods for creating scalars and points
//
// # Design Philosophy
//
// The interfaces use a mutable receiver pattern. Operations like Add, Mul,
// and ScalarMult set the receiver to the result and return it:
//
//	// Compute a + b*c
//	result := g.NewScalar().Mul(b, c)
//	result = g.NewScalar().Add(a, result)
//
// Decoding operations return errors rather than panicking.
//
// # Encodings
//
// Every implementation has a canonical fixed-length encoding for scalars
// and points, reported by [Group.ScalarSize] and [Group.PointSize]. The
// identity element has an encoding of the same length, so a list of encoded
// points can always be split without framing. Signatures are serialized as
// the scalar encoding followed by the point encoding.
//
// # Implementing a Group
//
//  1. Create a Scalar type that wraps your field element and implements [Scalar]
//  2. Create a Point type that wraps your curve point and implements [Point]
//  3. Create a Group type that implements [Group] as a factory
//
// See the bjj, ristretto, ed25519, secp256k1 and p256 packages.
//
// # Security Considerations
//
// Implementations must ensure:
//
//   - Scalar arithmetic is performed modulo the group order
//   - Random scalars are generated from the supplied reader only
//   - Invalid or non-canonical encodings are rejected in SetBytes
package group
