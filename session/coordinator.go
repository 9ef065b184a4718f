package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/musig/musig"
)

// DefaultRoundTimeout bounds each round when Config leaves it unset.
const DefaultRoundTimeout = 30 * time.Second

// Config holds coordinator settings.
type Config struct {
	// RoundTimeout bounds how long a round waits for every participant.
	RoundTimeout time.Duration
}

// Coordinator drives signing sessions across a set of participants. It
// holds no per-session state, so one Coordinator can run any number of
// sessions concurrently.
type Coordinator struct {
	m       *musig.MuSig
	cfg     Config
	logger  *zap.Logger
	metrics *Metrics
	newID   func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithMetrics sets the metrics sink. The default records nothing.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithIDGenerator sets the session ID source. The default is a random UUID.
func WithIDGenerator(f func() string) Option {
	return func(c *Coordinator) {
		c.newID = f
	}
}

// NewCoordinator creates a coordinator for sessions under m.
func NewCoordinator(m *musig.MuSig, cfg Config, opts ...Option) *Coordinator {
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = DefaultRoundTimeout
	}
	c := &Coordinator{
		m:      m,
		cfg:    cfg,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// gather calls fn for every participant concurrently and waits until all
// of them answered, one failed, or the round deadline passed. Participants
// that ignore ctx do not hold up the round past its deadline.
func gather[T any](ctx context.Context, c *Coordinator, round string, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	start := time.Now()
	defer func() { c.metrics.observeRound(round, time.Since(start)) }()

	rctx, cancel := context.WithTimeout(ctx, c.cfg.RoundTimeout)
	defer cancel()
	eg, gctx := errgroup.WithContext(rctx)

	var mu sync.Mutex
	out := make([]T, n)
	answered := make([]bool, n)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			v, err := fn(gctx, i)
			if err != nil {
				return &ParticipantError{Round: round, Index: i, Err: err}
			}
			mu.Lock()
			out[i] = v
			answered[i] = true
			mu.Unlock()
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-rctx.Done():
		select {
		case err = <-done:
		default:
			err = rctx.Err()
		}
	}
	if err == nil {
		return out, nil
	}
	if ctx.Err() == nil && errors.Is(rctx.Err(), context.DeadlineExceeded) {
		mu.Lock()
		defer mu.Unlock()
		var missing []int
		for i, ok := range answered {
			if !ok {
				missing = append(missing, i)
			}
		}
		return nil, &TimeoutError{Round: round, Missing: missing}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, err
}
