package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/f3rmion/musig/curves"
	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/musig"
)

func newParticipants(t *testing.T, m *musig.MuSig, n int) []*LocalParticipant {
	t.Helper()
	ps := make([]*LocalParticipant, n)
	for i := range ps {
		p, err := GenerateLocalParticipant(m, rand.Reader)
		if err != nil {
			t.Fatalf("failed to create participant %d: %v", i, err)
		}
		ps[i] = p
	}
	return ps
}

func asParticipants(ps []*LocalParticipant) []Participant {
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

func publicKeys(t *testing.T, ps []*LocalParticipant) []group.Point {
	t.Helper()
	keys := make([]group.Point, len(ps))
	for i, p := range ps {
		k, err := p.PublicKey(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		keys[i] = k
	}
	return keys
}

func TestRunSigns(t *testing.T) {
	for _, g := range curves.All() {
		t.Run(g.Name(), func(t *testing.T) {
			m := musig.New(g)
			c := NewCoordinator(m, Config{RoundTimeout: 5 * time.Second})
			for n := 1; n <= 4; n++ {
				t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
					ps := newParticipants(t, m, n)
					msg := []byte("hello-world")

					res, err := c.Run(context.Background(), asParticipants(ps), msg)
					if err != nil {
						t.Fatalf("run failed: %v", err)
					}
					if !m.Verify(res.Signature, publicKeys(t, ps), msg) {
						t.Error("session signature rejected")
					}
					if m.Verify(res.Signature, publicKeys(t, ps), []byte("hello-worle")) {
						t.Error("session signature verified over a different message")
					}
					for i, p := range ps {
						if p.Active() != 0 {
							t.Errorf("participant %d kept session state", i)
						}
					}
				})
			}
		})
	}
}

func TestRunConcurrentSessions(t *testing.T) {
	m := musig.New(curves.All()[0])
	c := NewCoordinator(m, Config{RoundTimeout: 5 * time.Second})
	ps := newParticipants(t, m, 3)
	keys := publicKeys(t, ps)
	msg := []byte("same message")

	const sessions = 8
	results := make([]*Result, sessions)
	errs := make([]error, sessions)
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Run(context.Background(), asParticipants(ps), msg)
		}()
	}
	wg.Wait()

	ids := make(map[string]bool)
	nonces := make(map[string]bool)
	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("session %d failed: %v", i, errs[i])
		}
		if !m.Verify(res.Signature, keys, msg) {
			t.Errorf("session %d signature rejected", i)
		}
		ids[res.SessionID] = true
		nonces[string(res.Signature.R().Bytes())] = true
	}
	if len(ids) != sessions {
		t.Errorf("got %d distinct session IDs, want %d", len(ids), sessions)
	}
	if len(nonces) != sessions {
		t.Errorf("got %d distinct nonces, want %d", len(nonces), sessions)
	}
}

// stalledParticipant never answers Reveal until released.
type stalledParticipant struct {
	*LocalParticipant
	release chan struct{}
}

func (p *stalledParticipant) Reveal(ctx context.Context, sessionID string) (group.Point, error) {
	<-p.release
	return p.LocalParticipant.Reveal(ctx, sessionID)
}

func TestRunTimeout(t *testing.T) {
	m := musig.New(curves.All()[0])
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := NewCoordinator(m, Config{RoundTimeout: 50 * time.Millisecond},
		WithMetrics(metrics),
		WithIDGenerator(func() string { return "stalled-session" }),
	)

	ps := newParticipants(t, m, 3)
	stalled := &stalledParticipant{LocalParticipant: ps[1], release: make(chan struct{})}
	defer close(stalled.release)
	participants := []Participant{ps[0], stalled, ps[2]}

	_, err := c.Run(context.Background(), participants, []byte("timeout"))
	if !errors.Is(err, ErrRoundTimeout) {
		t.Fatalf("got %v, want ErrRoundTimeout", err)
	}
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("got %T, want *TimeoutError", err)
	}
	if timeoutErr.Round != RoundReveal || len(timeoutErr.Missing) != 1 || timeoutErr.Missing[0] != 1 {
		t.Errorf("got round %s missing %v, want reveal [1]", timeoutErr.Round, timeoutErr.Missing)
	}

	for i, p := range ps {
		if p.Active() != 0 {
			t.Errorf("participant %d kept its nonce after the abort", i)
		}
		_, err := p.Commit(context.Background(), &CommitRequest{
			SessionID: "stalled-session",
			Index:     i,
			Keys:      publicKeys(t, ps),
		})
		if !errors.Is(err, ErrSessionClosed) {
			t.Errorf("participant %d: restarting an aborted session: got %v, want ErrSessionClosed", i, err)
		}
	}

	if got := testutil.ToFloat64(metrics.aborts.WithLabelValues(ReasonTimeout)); got != 1 {
		t.Errorf("timeout aborts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.sessions.WithLabelValues(OutcomeAborted)); got != 1 {
		t.Errorf("aborted sessions = %v, want 1", got)
	}
}

// equivocatingParticipant reveals a nonce it did not commit to.
type equivocatingParticipant struct {
	*LocalParticipant
	g group.Group
}

func (p *equivocatingParticipant) Reveal(ctx context.Context, sessionID string) (group.Point, error) {
	R, err := p.LocalParticipant.Reveal(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return p.g.NewPoint().Add(R, p.g.Generator()), nil
}

func TestRunCommitmentMismatch(t *testing.T) {
	g := curves.All()[0]
	m := musig.New(g)
	metrics := NewMetrics(nil)
	c := NewCoordinator(m, Config{RoundTimeout: 5 * time.Second}, WithMetrics(metrics))

	ps := newParticipants(t, m, 3)
	participants := []Participant{ps[0], ps[1], &equivocatingParticipant{LocalParticipant: ps[2], g: g}}

	_, err := c.Run(context.Background(), participants, []byte("hello-world"))
	if !errors.Is(err, musig.ErrCommitmentMismatch) {
		t.Fatalf("got %v, want ErrCommitmentMismatch", err)
	}
	var commitErr *musig.CommitmentError
	if !errors.As(err, &commitErr) || commitErr.Index != 2 {
		t.Errorf("got %v, want participant 2", err)
	}
	for i, p := range ps {
		if p.Active() != 0 {
			t.Errorf("participant %d kept its nonce after the mismatch", i)
		}
	}
	if got := testutil.ToFloat64(metrics.aborts.WithLabelValues(ReasonCommitmentMismatch)); got != 1 {
		t.Errorf("commitment aborts = %v, want 1", got)
	}
}

// skewedParticipant returns a partial signature off by one.
type skewedParticipant struct {
	*LocalParticipant
	g group.Group
}

func (p *skewedParticipant) Sign(ctx context.Context, req *SignRequest) (group.Scalar, error) {
	s, err := p.LocalParticipant.Sign(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.g.NewScalar().Add(s, p.g.NewScalar().SetUint64(1)), nil
}

func TestRunInvalidPartial(t *testing.T) {
	g := curves.All()[0]
	m := musig.New(g)
	c := NewCoordinator(m, Config{RoundTimeout: 5 * time.Second})

	ps := newParticipants(t, m, 3)
	participants := []Participant{ps[0], &skewedParticipant{LocalParticipant: ps[1], g: g}, ps[2]}

	_, err := c.Run(context.Background(), participants, []byte("partial"))
	var partialErr *musig.PartialError
	if !errors.As(err, &partialErr) || partialErr.Index != 1 {
		t.Fatalf("got %v, want invalid partial from participant 1", err)
	}
	if !errors.Is(err, musig.ErrInvalidPartial) {
		t.Errorf("got %v, want ErrInvalidPartial", err)
	}
}

func TestRunCanceled(t *testing.T) {
	m := musig.New(curves.All()[0])
	c := NewCoordinator(m, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, asParticipants(newParticipants(t, m, 2)), []byte("x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrRoundTimeout) {
		t.Error("cancellation reported as a timeout")
	}
}

func TestRunRejectsEmpty(t *testing.T) {
	c := NewCoordinator(musig.New(curves.All()[0]), Config{})
	if _, err := c.Run(context.Background(), nil, []byte("x")); !errors.Is(err, musig.ErrNoKeys) {
		t.Errorf("got %v, want ErrNoKeys", err)
	}
}

func TestRunLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := musig.New(curves.All()[0])
	c := NewCoordinator(m, Config{},
		WithLogger(zap.New(core)),
		WithIDGenerator(func() string { return "logged-session" }),
	)

	if _, err := c.Run(context.Background(), asParticipants(newParticipants(t, m, 2)), []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("session signed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d completion entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["session_id"]; got != "logged-session" {
		t.Errorf("session_id = %v, want logged-session", got)
	}
}

func TestLocalParticipantOrdering(t *testing.T) {
	ctx := context.Background()
	m := musig.New(curves.All()[0])
	ps := newParticipants(t, m, 2)
	keys := publicKeys(t, ps)
	p := ps[0]

	if _, err := p.Reveal(ctx, "s"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("reveal before commit: got %v, want ErrUnknownSession", err)
	}
	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "s", Index: 1, Keys: keys}); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("commit at foreign index: got %v, want ErrKeyMismatch", err)
	}
	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "s", Index: 0, Keys: keys}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "s", Index: 0, Keys: keys}); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("second commit: got %v, want ErrOutOfOrder", err)
	}
	if _, err := p.Sign(ctx, &SignRequest{SessionID: "s"}); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("sign before reveal: got %v, want ErrOutOfOrder", err)
	}
	if _, err := p.Reveal(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Reveal(ctx, "s"); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("second reveal: got %v, want ErrOutOfOrder", err)
	}

	p.Abort("s")
	if p.Active() != 0 {
		t.Error("abort kept session state")
	}
	if _, err := p.Reveal(ctx, "s"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("reveal after abort: got %v, want ErrSessionClosed", err)
	}
}

func TestLocalParticipantChecksOpenings(t *testing.T) {
	ctx := context.Background()
	g := curves.All()[0]
	m := musig.New(g)
	ps := newParticipants(t, m, 2)
	keys := publicKeys(t, ps)

	commitments := make([]group.Scalar, len(ps))
	nonces := make([]group.Point, len(ps))
	for i, p := range ps {
		var err error
		if commitments[i], err = p.Commit(ctx, &CommitRequest{SessionID: "s", Index: i, Keys: keys, Message: []byte("x")}); err != nil {
			t.Fatal(err)
		}
	}
	for i, p := range ps {
		var err error
		if nonces[i], err = p.Reveal(ctx, "s"); err != nil {
			t.Fatal(err)
		}
	}

	// The coordinator hands participant 0 a forged opening for participant 1.
	forged := []group.Point{nonces[0], g.NewPoint().Add(nonces[1], g.Generator())}
	_, err := ps[0].Sign(ctx, &SignRequest{SessionID: "s", Commitments: commitments, Nonces: forged})
	var commitErr *musig.CommitmentError
	if !errors.As(err, &commitErr) || commitErr.Index != 1 {
		t.Fatalf("got %v, want commitment mismatch at 1", err)
	}
	if _, err := ps[0].Sign(ctx, &SignRequest{SessionID: "s", Commitments: commitments, Nonces: nonces}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("sign after failed check: got %v, want ErrSessionClosed", err)
	}

	// Participant 1 still signs the honest request.
	if _, err := ps[1].Sign(ctx, &SignRequest{SessionID: "s", Commitments: commitments, Nonces: nonces}); err != nil {
		t.Errorf("honest sign failed: %v", err)
	}
}

func TestLocalParticipantForgetsClosedIDs(t *testing.T) {
	ctx := context.Background()
	m := musig.New(curves.All()[0])
	p, err := GenerateLocalParticipant(m, rand.Reader, WithClosedRetention(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	keys := []group.Point{p.public}

	clock := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		p.Abort(fmt.Sprintf("old-%d", i))
	}
	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "old-0", Keys: keys}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("commit inside retention: got %v, want ErrSessionClosed", err)
	}

	clock = clock.Add(30 * time.Second)
	p.Abort("recent")
	// Re-closing extends the window for that ID only.
	p.Abort("old-1")

	clock = clock.Add(45 * time.Second)
	p.Abort("trigger")
	if got := len(p.closed); got != 3 {
		t.Errorf("closed IDs after window = %d, want 3", got)
	}
	if len(p.retired) != 3 {
		t.Errorf("retired queue = %d, want 3", len(p.retired))
	}

	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "recent", Keys: keys}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("recent ID: got %v, want ErrSessionClosed", err)
	}
	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "old-1", Keys: keys}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("re-closed ID: got %v, want ErrSessionClosed", err)
	}
	if _, err := p.Commit(ctx, &CommitRequest{SessionID: "old-0", Keys: keys}); err != nil {
		t.Errorf("expired ID should start a fresh session: %v", err)
	}
	if p.Active() != 1 {
		t.Errorf("active = %d, want 1", p.Active())
	}
}
