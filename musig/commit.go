package musig

import (
	"github.com/f3rmion/musig/group"
)

// VerifyOpenings checks Hash("com", nonces[i]) == commitments[i] for every
// signer. The first mismatch is reported as a [*CommitmentError].
func (m *MuSig) VerifyOpenings(commitments []group.Scalar, nonces []group.Point) error {
	if len(commitments) != len(nonces) {
		return ErrContributionCount
	}
	for i, R := range nonces {
		if R == nil || commitments[i] == nil {
			return &CommitmentError{Index: i}
		}
		if !m.Commit(R).Equal(commitments[i]) {
			return &CommitmentError{Index: i}
		}
	}
	return nil
}

// AggregateNonces returns R = sum(R_i). The identity is rejected.
func (m *MuSig) AggregateNonces(nonces []group.Point) (group.Point, error) {
	if len(nonces) == 0 {
		return nil, ErrNoKeys
	}
	R := m.group.NewPoint()
	for _, Ri := range nonces {
		R = m.group.NewPoint().Add(R, Ri)
	}
	if R.IsIdentity() {
		return nil, ErrIdentityNonce
	}
	return R, nil
}

// VerifyPartial checks s_i*G == R_i + (c*a_i)*pk_i.
func (m *MuSig) VerifyPartial(partial group.Scalar, nonce, publicKey group.Point, coefficient, challenge group.Scalar) bool {
	lhs := group.BaseMult(m.group, partial)
	ca := m.group.NewScalar().Mul(challenge, coefficient)
	rhs := m.group.NewPoint().Add(nonce, m.group.NewPoint().ScalarMult(ca, publicKey))
	return lhs.Equal(rhs)
}

// SumPartials returns s = sum(s_i).
func (m *MuSig) SumPartials(partials []group.Scalar) group.Scalar {
	s := m.group.NewScalar()
	for _, si := range partials {
		s = m.group.NewScalar().Add(s, si)
	}
	return s
}
