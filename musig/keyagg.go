package musig

import (
	"bytes"
	"sort"

	"github.com/f3rmion/musig/group"
)

// AggregateKey is the result of key aggregation: the keys in hashing
// order, one coefficient per key, and X = sum(a_i * pk_i).
type AggregateKey struct {
	// Keys are the public keys in the order they were hashed.
	Keys []group.Point
	// Coefficients[j] is the aggregation coefficient of Keys[j].
	Coefficients []group.Scalar
	// Key is the aggregate public key X.
	Key group.Point

	// positions[i] is where the caller's i-th key ended up in Keys.
	positions []int
}

// CoefficientFor returns the coefficient of the i-th key of the list that
// was passed to [MuSig.AggregateKeys].
func (k *AggregateKey) CoefficientFor(i int) group.Scalar {
	return k.Coefficients[k.positions[i]]
}

// Position returns where the caller's i-th key sits in k.Keys.
func (k *AggregateKey) Position(i int) int {
	return k.positions[i]
}

// OrderKeys returns the permutation the configured [KeyOrder] applies:
// element j of the result is the index in keys of the j-th hashed key.
func (m *MuSig) OrderKeys(keys []group.Point) []int {
	perm := make([]int, len(keys))
	for i := range perm {
		perm[i] = i
	}
	if m.order != KeyOrderSorted {
		return perm
	}
	enc := make([][]byte, len(keys))
	for i, k := range keys {
		enc[i] = k.Bytes()
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return bytes.Compare(enc[perm[a]], enc[perm[b]]) < 0
	})
	return perm
}

// AggregateKeys computes a_i = Hash("agg", pk_1..pk_n, pk_i) for every key
// and the aggregate key X.
//
// An empty list, an identity key, or an identity aggregate is rejected.
func (m *MuSig) AggregateKeys(keys []group.Point) (*AggregateKey, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	for i, k := range keys {
		if k == nil || k.IsIdentity() {
			return nil, &KeyError{Index: i}
		}
	}

	perm := m.OrderKeys(keys)
	ordered := make([]group.Point, len(keys))
	positions := make([]int, len(keys))
	// parts holds every encoded key followed by a slot for pk_i.
	parts := make([][]byte, len(keys)+1)
	for j, i := range perm {
		ordered[j] = m.group.NewPoint().Set(keys[i])
		positions[i] = j
		parts[j] = ordered[j].Bytes()
	}

	coeffs := make([]group.Scalar, len(ordered))
	X := m.group.NewPoint()
	for j, pk := range ordered {
		parts[len(ordered)] = parts[j]
		coeffs[j] = m.hasher.HashToScalar(m.group, TagAgg, parts...)
		term := m.group.NewPoint().ScalarMult(coeffs[j], pk)
		X = m.group.NewPoint().Add(X, term)
	}
	if X.IsIdentity() {
		return nil, ErrIdentityAggregate
	}

	return &AggregateKey{
		Keys:         ordered,
		Coefficients: coeffs,
		Key:          X,
		positions:    positions,
	}, nil
}
