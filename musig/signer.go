package musig

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/f3rmion/musig/group"
)

// Signer is one participant's secret material: a secret key, its public
// key, and the nonce for the current signing attempt.
//
// A nonce is used at most once. It is consumed by [Signer.PartialSignature],
// handed over to a [Session] by [MuSig.NewSession], or erased by
// [Signer.Discard]; after that the signer must be refreshed with a new nonce
// before it can sign again.
type Signer struct {
	mu     sync.Mutex
	group  group.Group
	hasher Hasher
	secret group.Scalar
	public group.Point
	nonce  *secretNonce
}

// secretNonce is a nonce scalar together with its public point.
type secretNonce struct {
	r group.Scalar
	R group.Point
}

func (n *secretNonce) erase(g group.Group) {
	if n == nil || n.r == nil {
		return
	}
	n.r.Set(g.NewScalar())
	n.r = nil
}

// NewSigner generates a random secret key and a first nonce.
func (m *MuSig) NewSigner(rng io.Reader) (*Signer, error) {
	secret, err := group.RandomNonZeroScalar(m.group, rng)
	if err != nil {
		return nil, fmt.Errorf("generate secret key: %w", err)
	}
	return m.NewSignerFromSecret(secret, rng)
}

// NewSignerFromSecret creates a signer for an existing secret key and
// samples its first nonce from rng.
func (m *MuSig) NewSignerFromSecret(secret group.Scalar, rng io.Reader) (*Signer, error) {
	if secret == nil || secret.IsZero() {
		return nil, ErrZeroSecret
	}
	s := &Signer{
		group:  m.group,
		hasher: m.hasher,
		secret: m.group.NewScalar().Set(secret),
		public: group.BaseMult(m.group, secret),
	}
	if err := s.Refresh(rng); err != nil {
		return nil, err
	}
	return s, nil
}

func sampleNonce(g group.Group, rng io.Reader) (*secretNonce, error) {
	r, err := group.RandomNonZeroScalar(g, rng)
	if errors.Is(err, group.ErrZeroScalar) {
		return nil, fmt.Errorf("%w: %w", ErrDegenerateNonce, err)
	}
	if err != nil {
		return nil, fmt.Errorf("sample nonce: %w", err)
	}
	return &secretNonce{r: r, R: group.BaseMult(g, r)}, nil
}

// Refresh replaces the signer's nonce with a freshly sampled one. Any
// previous nonce is erased first.
func (s *Signer) Refresh(rng io.Reader) error {
	n, err := sampleNonce(s.group, rng)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce.erase(s.group)
	s.nonce = n
	return nil
}

// Discard erases the current nonce.
func (s *Signer) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce.erase(s.group)
	s.nonce = nil
}

// HasNonce reports whether the signer holds an unused nonce.
func (s *Signer) HasNonce() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce != nil
}

// PublicKey returns secret*G.
func (s *Signer) PublicKey() group.Point {
	return s.group.NewPoint().Set(s.public)
}

// NoncePoint returns R_i = r_i*G for the current nonce.
func (s *Signer) NoncePoint() (group.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonce == nil {
		return nil, ErrNonceConsumed
	}
	return s.group.NewPoint().Set(s.nonce.R), nil
}

// Commitment returns t_i = Hash("com", R_i) for the current nonce.
func (s *Signer) Commitment() (group.Scalar, error) {
	R, err := s.NoncePoint()
	if err != nil {
		return nil, err
	}
	return s.hasher.HashToScalar(s.group, TagCom, R.Bytes()), nil
}

// PartialSignature returns s_i = r_i + challenge*coefficient*secret and
// consumes the nonce.
func (s *Signer) PartialSignature(challenge, coefficient group.Scalar) (group.Scalar, error) {
	n, err := s.takeNonce()
	if err != nil {
		return nil, err
	}
	defer n.erase(s.group)
	return s.partial(n, challenge, coefficient), nil
}

// takeNonce moves the nonce out of the signer.
func (s *Signer) takeNonce() (*secretNonce, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonce == nil {
		return nil, ErrNonceConsumed
	}
	n := s.nonce
	s.nonce = nil
	return n, nil
}

func (s *Signer) partial(n *secretNonce, challenge, coefficient group.Scalar) group.Scalar {
	ca := s.group.NewScalar().Mul(challenge, coefficient)
	cax := s.group.NewScalar().Mul(ca, s.secret)
	return s.group.NewScalar().Add(n.r, cax)
}
