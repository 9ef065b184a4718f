package musig

import (
	"sync"

	"github.com/f3rmion/musig/group"
)

// state is the session data threaded through the rounds. Exactly one
// handle owns it at any time.
type state struct {
	m           *MuSig
	message     []byte
	signers     []*Signer
	nonces      []*secretNonce
	agg         *AggregateKey
	commitments []group.Scalar
	aggNonce    group.Point
}

// discard erases every nonce held by the session.
func (st *state) discard() {
	for _, n := range st.nonces {
		n.erase(st.m.group)
	}
	st.nonces = nil
}

// stage is embedded by every round handle. Advancing takes the state out
// of the handle, so each handle can be advanced or aborted only once.
type stage struct {
	mu sync.Mutex
	st *state
}

func (s *stage) take() (*state, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == nil {
		return nil, ErrStateConsumed
	}
	st := s.st
	s.st = nil
	return st, nil
}

// Abort ends the session and erases its nonces. It is a no-op on a handle
// that was already advanced.
func (s *stage) Abort() {
	st, err := s.take()
	if err != nil {
		return
	}
	st.discard()
}

// Session is an in-process MuSig signing session in its initial state. It
// owns the nonces of its signers from creation until it finishes or aborts.
//
// The rounds are encoded as distinct handle types, so a later round can
// only be reached through the earlier ones:
//
//	sess, _ := m.NewSession(signers, msg)
//	keys, _ := sess.AggregateKeys()
//	commits, _ := keys.CollectCommitments()
//	opened, _ := commits.RevealNonces()
//	sig, _ := opened.Assemble()
type Session struct {
	stage
}

// KeysAggregated is the session after key aggregation.
type KeysAggregated struct {
	stage
	key *AggregateKey
}

// CommitmentsCollected is the session after every signer has published its
// nonce commitment and before any nonce is revealed.
type CommitmentsCollected struct {
	stage
	commitments []group.Scalar
}

// CommitmentsExchanged is the session after every nonce was revealed and
// checked against its commitment.
type CommitmentsExchanged struct {
	stage
	nonce group.Point
}

// NewSession starts a session for signers over message. It takes ownership
// of each signer's current nonce; a signer without a nonce fails the call
// with [ErrNonceConsumed], and nonces already taken by the failed call are
// erased.
func (m *MuSig) NewSession(signers []*Signer, message []byte) (*Session, error) {
	if len(signers) == 0 {
		return nil, ErrNoKeys
	}
	st := &state{
		m:       m,
		message: append([]byte(nil), message...),
		signers: append([]*Signer(nil), signers...),
		nonces:  make([]*secretNonce, 0, len(signers)),
	}
	for _, s := range signers {
		n, err := s.takeNonce()
		if err != nil {
			st.discard()
			return nil, err
		}
		st.nonces = append(st.nonces, n)
	}
	return &Session{stage{st: st}}, nil
}

// Message returns a copy of the message being signed.
func (s *Session) Message() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == nil {
		return nil
	}
	return append([]byte(nil), s.st.message...)
}

// AggregateKeys computes every signer's coefficient and the aggregate key.
// Any error aborts the session.
func (s *Session) AggregateKeys() (*KeysAggregated, error) {
	st, err := s.take()
	if err != nil {
		return nil, err
	}
	keys := make([]group.Point, len(st.signers))
	for i, signer := range st.signers {
		keys[i] = signer.PublicKey()
	}
	agg, err := st.m.AggregateKeys(keys)
	if err != nil {
		st.discard()
		return nil, err
	}
	st.agg = agg
	return &KeysAggregated{stage: stage{st: st}, key: agg}, nil
}

// AggregateKey returns the aggregation result.
func (k *KeysAggregated) AggregateKey() *AggregateKey {
	return k.key
}

// CollectCommitments gathers t_i = Hash("com", R_i) from every signer. No
// nonce point is released by this round.
func (k *KeysAggregated) CollectCommitments() (*CommitmentsCollected, error) {
	st, err := k.take()
	if err != nil {
		return nil, err
	}
	commitments := make([]group.Scalar, len(st.nonces))
	for i, n := range st.nonces {
		commitments[i] = st.m.Commit(n.R)
	}
	st.commitments = commitments
	return &CommitmentsCollected{stage: stage{st: st}, commitments: commitments}, nil
}

// Commitments returns the collected commitments in signer order.
func (c *CommitmentsCollected) Commitments() []group.Scalar {
	return c.commitments
}

// RevealNonces opens every R_i, checks it against its commitment, and sums
// the aggregate nonce. A mismatch aborts the session with a
// [*CommitmentError] and erases every nonce.
func (c *CommitmentsCollected) RevealNonces() (*CommitmentsExchanged, error) {
	st, err := c.take()
	if err != nil {
		return nil, err
	}
	openings := make([]group.Point, len(st.nonces))
	for i, n := range st.nonces {
		openings[i] = n.R
	}
	if err := st.m.VerifyOpenings(st.commitments, openings); err != nil {
		st.discard()
		return nil, err
	}
	R, err := st.m.AggregateNonces(openings)
	if err != nil {
		st.discard()
		return nil, err
	}
	st.aggNonce = R
	return &CommitmentsExchanged{stage: stage{st: st}, nonce: R}, nil
}

// AggregateNonce returns R = sum(R_i).
func (c *CommitmentsExchanged) AggregateNonce() group.Point {
	return c.nonce
}

// Assemble computes the challenge, every partial signature and their sum.
// The nonces are erased whether or not assembly succeeds.
func (c *CommitmentsExchanged) Assemble() (*Signature, error) {
	st, err := c.take()
	if err != nil {
		return nil, err
	}
	defer st.discard()

	m := st.m
	challenge := m.Challenge(st.agg.Key, st.aggNonce, st.message)
	partials := make([]group.Scalar, len(st.signers))
	for i, signer := range st.signers {
		partials[i] = signer.partial(st.nonces[i], challenge, st.agg.CoefficientFor(i))
	}
	return newSignature(m.group, m.SumPartials(partials), st.aggNonce), nil
}

// Sign runs every round of a session over signers and message.
func (m *MuSig) Sign(signers []*Signer, message []byte) (*Signature, error) {
	sess, err := m.NewSession(signers, message)
	if err != nil {
		return nil, err
	}
	keys, err := sess.AggregateKeys()
	if err != nil {
		return nil, err
	}
	commits, err := keys.CollectCommitments()
	if err != nil {
		return nil, err
	}
	opened, err := commits.RevealNonces()
	if err != nil {
		return nil, err
	}
	return opened.Assemble()
}
