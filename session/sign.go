package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/musig"
)

// Result is the output of a successful session.
type Result struct {
	SessionID    string
	Signature    *musig.Signature
	AggregateKey *musig.AggregateKey
}

// Run signs message with every participant. The rounds are keys, commit,
// reveal and sign; each waits for all participants before the next starts.
//
// Any failure aborts the session on every participant. Commitment
// mismatches are reported as [*musig.CommitmentError], bad partial
// signatures as [*musig.PartialError], and missing answers as
// [*TimeoutError].
func (c *Coordinator) Run(ctx context.Context, participants []Participant, message []byte) (*Result, error) {
	if len(participants) == 0 {
		return nil, musig.ErrNoKeys
	}
	id := c.newID()
	log := c.logger.With(zap.String("session_id", id), zap.Int("participants", len(participants)))
	log.Debug("session started")

	res, err := c.run(ctx, id, participants, append([]byte(nil), message...))
	if err != nil {
		for _, p := range participants {
			p.Abort(id)
		}
		reason := abortReason(err)
		c.metrics.aborted(reason)
		log.Warn("session aborted", zap.String("reason", reason), zap.Error(err))
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	c.metrics.succeeded()
	log.Info("session signed")
	return res, nil
}

func (c *Coordinator) run(ctx context.Context, id string, participants []Participant, message []byte) (*Result, error) {
	m := c.m
	n := len(participants)

	keys, err := gather(ctx, c, RoundKeys, n, func(ctx context.Context, i int) (group.Point, error) {
		return participants[i].PublicKey(ctx)
	})
	if err != nil {
		return nil, err
	}
	agg, err := m.AggregateKeys(keys)
	if err != nil {
		return nil, err
	}

	commitments, err := gather(ctx, c, RoundCommit, n, func(ctx context.Context, i int) (group.Scalar, error) {
		return participants[i].Commit(ctx, &CommitRequest{
			SessionID: id,
			Index:     i,
			Keys:      keys,
			Message:   message,
		})
	})
	if err != nil {
		return nil, err
	}

	nonces, err := gather(ctx, c, RoundReveal, n, func(ctx context.Context, i int) (group.Point, error) {
		return participants[i].Reveal(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if err := m.VerifyOpenings(commitments, nonces); err != nil {
		return nil, err
	}
	R, err := m.AggregateNonces(nonces)
	if err != nil {
		return nil, err
	}

	req := &SignRequest{SessionID: id, Commitments: commitments, Nonces: nonces}
	partials, err := gather(ctx, c, RoundSign, n, func(ctx context.Context, i int) (group.Scalar, error) {
		return participants[i].Sign(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	challenge := m.Challenge(agg.Key, R, message)
	for i, s := range partials {
		if s == nil || !m.VerifyPartial(s, nonces[i], keys[i], agg.CoefficientFor(i), challenge) {
			return nil, &musig.PartialError{Index: i}
		}
	}
	sig := musig.NewSignature(m.Group(), m.SumPartials(partials), R)
	if !m.VerifyAggregate(sig, agg.Key, message) {
		return nil, musig.ErrInvalidPartial
	}
	return &Result{SessionID: id, Signature: sig, AggregateKey: agg}, nil
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, ErrRoundTimeout):
		return ReasonTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, musig.ErrCommitmentMismatch):
		return ReasonCommitmentMismatch
	case errors.Is(err, musig.ErrInvalidPartial):
		return ReasonInvalidPartial
	case errors.Is(err, musig.ErrIdentityNonce):
		return ReasonIdentityNonce
	case errors.Is(err, musig.ErrIdentityKey), errors.Is(err, musig.ErrIdentityAggregate):
		return ReasonInvalidKeys
	default:
		return ReasonParticipant
	}
}
