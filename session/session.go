package session

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/musig"
)

// Participant is one signer as seen by a [Coordinator]. Implementations may
// run in process or forward each call to a remote signer.
//
// Requests are shared between participants and must be treated as
// read-only.
type Participant interface {
	// PublicKey returns the participant's long-term public key.
	PublicKey(ctx context.Context) (group.Point, error)
	// Commit starts a session and returns the nonce commitment t_i.
	Commit(ctx context.Context, req *CommitRequest) (group.Scalar, error)
	// Reveal returns the nonce point R_i committed to in Commit.
	Reveal(ctx context.Context, sessionID string) (group.Point, error)
	// Sign checks every opening and returns the partial signature s_i.
	Sign(ctx context.Context, req *SignRequest) (group.Scalar, error)
	// Abort ends the session and erases its nonce.
	Abort(sessionID string)
}

// CommitRequest opens a session on a participant.
type CommitRequest struct {
	SessionID string
	// Index is the participant's position in Keys.
	Index   int
	Keys    []group.Point
	Message []byte
}

// SignRequest carries every commitment and nonce, in participant order.
type SignRequest struct {
	SessionID   string
	Commitments []group.Scalar
	Nonces      []group.Point
}

type phase int

const (
	phaseCommitted phase = iota
	phaseRevealed
)

// localSession is a participant's state for one session.
type localSession struct {
	phase      phase
	index      int
	message    []byte
	agg        *musig.AggregateKey
	signer     *musig.Signer
	commitment group.Scalar
}

// DefaultClosedRetention is how long a LocalParticipant remembers a closed
// session ID.
const DefaultClosedRetention = 10 * time.Minute

// retiredID is a closed session ID and when it was closed.
type retiredID struct {
	id string
	at time.Time
}

// LocalParticipant is an in-process [Participant] holding a secret key.
//
// Each session gets its own nonce. The nonce is erased when the session
// signs or aborts, and a closed session ID is refused with
// [ErrSessionClosed] for the retention window. After that the ID is
// forgotten and a new Commit under it starts a fresh session with a fresh
// nonce. Memory for closed IDs is bounded by the close rate times the
// window.
type LocalParticipant struct {
	mu       sync.Mutex
	m        *musig.MuSig
	rng      io.Reader
	secret   group.Scalar
	public   group.Point
	sessions map[string]*localSession

	retention time.Duration
	now       func() time.Time
	closed    map[string]time.Time
	// retired holds closed IDs in close order.
	retired []retiredID
}

// LocalOption configures a LocalParticipant.
type LocalOption func(*LocalParticipant)

// WithClosedRetention sets how long closed session IDs are refused. Values
// of zero or less select DefaultClosedRetention.
func WithClosedRetention(d time.Duration) LocalOption {
	return func(p *LocalParticipant) {
		if d > 0 {
			p.retention = d
		}
	}
}

// NewLocalParticipant creates a participant for secret. Nonces are sampled
// from rng.
func NewLocalParticipant(m *musig.MuSig, secret group.Scalar, rng io.Reader, opts ...LocalOption) (*LocalParticipant, error) {
	if secret == nil || secret.IsZero() {
		return nil, musig.ErrZeroSecret
	}
	g := m.Group()
	p := &LocalParticipant{
		m:         m,
		rng:       rng,
		secret:    g.NewScalar().Set(secret),
		public:    group.BaseMult(g, secret),
		sessions:  make(map[string]*localSession),
		retention: DefaultClosedRetention,
		now:       time.Now,
		closed:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// GenerateLocalParticipant creates a participant with a random secret key.
func GenerateLocalParticipant(m *musig.MuSig, rng io.Reader, opts ...LocalOption) (*LocalParticipant, error) {
	secret, err := group.RandomNonZeroScalar(m.Group(), rng)
	if err != nil {
		return nil, fmt.Errorf("generate secret key: %w", err)
	}
	return NewLocalParticipant(m, secret, rng, opts...)
}

// PublicKey implements Participant.
func (p *LocalParticipant) PublicKey(ctx context.Context) (group.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.m.Group().NewPoint().Set(p.public), nil
}

// Commit implements Participant. It aggregates the keys itself, so the
// coefficient it later signs with never comes from the coordinator.
func (p *LocalParticipant) Commit(ctx context.Context, req *CommitRequest) (group.Scalar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= len(req.Keys) || req.Keys[req.Index] == nil ||
		!req.Keys[req.Index].Equal(p.public) {
		return nil, ErrKeyMismatch
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.prune()
	if _, ok := p.closed[req.SessionID]; ok {
		return nil, ErrSessionClosed
	}
	if _, ok := p.sessions[req.SessionID]; ok {
		return nil, ErrOutOfOrder
	}

	agg, err := p.m.AggregateKeys(req.Keys)
	if err != nil {
		return nil, err
	}
	signer, err := p.m.NewSignerFromSecret(p.secret, p.rng)
	if err != nil {
		return nil, err
	}
	commitment, err := signer.Commitment()
	if err != nil {
		return nil, err
	}
	p.sessions[req.SessionID] = &localSession{
		phase:      phaseCommitted,
		index:      req.Index,
		message:    append([]byte(nil), req.Message...),
		agg:        agg,
		signer:     signer,
		commitment: commitment,
	}
	return commitment, nil
}

// Reveal implements Participant.
func (p *LocalParticipant) Reveal(ctx context.Context, sessionID string) (group.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if s.phase != phaseCommitted {
		return nil, ErrOutOfOrder
	}
	R, err := s.signer.NoncePoint()
	if err != nil {
		return nil, err
	}
	s.phase = phaseRevealed
	return R, nil
}

// Sign implements Participant. Any failed check closes the session.
func (p *LocalParticipant) Sign(ctx context.Context, req *SignRequest) (group.Scalar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.lookup(req.SessionID)
	if err != nil {
		return nil, err
	}
	if s.phase != phaseRevealed {
		return nil, ErrOutOfOrder
	}
	defer p.close(req.SessionID)

	n := len(s.agg.Keys)
	if len(req.Commitments) != n || len(req.Nonces) != n {
		return nil, musig.ErrContributionCount
	}
	own, err := s.signer.NoncePoint()
	if err != nil {
		return nil, err
	}
	if req.Commitments[s.index] == nil || !req.Commitments[s.index].Equal(s.commitment) ||
		req.Nonces[s.index] == nil || !req.Nonces[s.index].Equal(own) {
		return nil, ErrKeyMismatch
	}
	if err := p.m.VerifyOpenings(req.Commitments, req.Nonces); err != nil {
		return nil, err
	}
	R, err := p.m.AggregateNonces(req.Nonces)
	if err != nil {
		return nil, err
	}
	c := p.m.Challenge(s.agg.Key, R, s.message)
	return s.signer.PartialSignature(c, s.agg.CoefficientFor(s.index))
}

// Abort implements Participant.
func (p *LocalParticipant) Abort(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.close(sessionID)
}

// Active returns the number of open sessions.
func (p *LocalParticipant) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func (p *LocalParticipant) lookup(id string) (*localSession, error) {
	if _, ok := p.closed[id]; ok {
		return nil, ErrSessionClosed
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// close erases the session's nonce and retires its ID. Must be called with
// p.mu held.
func (p *LocalParticipant) close(id string) {
	if s, ok := p.sessions[id]; ok {
		s.signer.Discard()
		delete(p.sessions, id)
	}
	p.prune()
	now := p.now()
	p.closed[id] = now
	p.retired = append(p.retired, retiredID{id: id, at: now})
}

// prune forgets closed IDs older than the retention window. Must be called
// with p.mu held.
func (p *LocalParticipant) prune() {
	cutoff := p.now().Add(-p.retention)
	n := 0
	for _, r := range p.retired {
		if r.at.After(cutoff) {
			break
		}
		// A re-closed ID has a newer entry further down.
		if at, ok := p.closed[r.id]; ok && !at.After(r.at) {
			delete(p.closed, r.id)
		}
		n++
	}
	if n > 0 {
		p.retired = slices.Delete(p.retired, 0, n)
	}
}
