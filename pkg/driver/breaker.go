package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures BreakerStore.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
	// MinRequests is the request count below which the breaker never trips.
	MinRequests uint32
}

// BreakerStore wraps a GraphStore with a circuit breaker. Only
// connectivity failures count against the breaker, so a batch rejected by
// a constraint does not open it. While open, calls fail fast with an error
// matching ErrStoreUnavailable.
type BreakerStore struct {
	next   GraphStore
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerStore wraps next.
func NewBreakerStore(next GraphStore, s BreakerSettings, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	if s.ReadyToTripRatio <= 0 {
		s.ReadyToTripRatio = 0.6
	}

	name := fmt.Sprintf("graph-store-%s", next.Provider())
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("Circuit breaker tripped", "breaker", name, "from", from.String(), "to", to.String())
				return
			}
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrStoreUnavailable)
		},
	}

	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(st), logger: logger}
}

func (b *BreakerStore) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &StoreError{Op: "breaker", Unavailable: true, Err: err}
	}
	return err
}

// ExecuteWrite implements GraphStore.
func (b *BreakerStore) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Counters, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ExecuteWrite(ctx, cypher, params)
	})
	if err != nil {
		return Counters{}, b.wrap(err)
	}
	return res.(Counters), nil
}

// ExecuteRead implements GraphStore.
func (b *BreakerStore) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ExecuteRead(ctx, cypher, params)
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	return res.([]Record), nil
}

// RunSchema implements GraphStore.
func (b *BreakerStore) RunSchema(ctx context.Context, cypher string) (Counters, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.RunSchema(ctx, cypher)
	})
	if err != nil {
		return Counters{}, b.wrap(err)
	}
	return res.(Counters), nil
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State { return b.cb.State() }

// Provider implements GraphStore.
func (b *BreakerStore) Provider() GraphProvider { return b.next.Provider() }

// VerifyConnectivity implements GraphStore.
func (b *BreakerStore) VerifyConnectivity(ctx context.Context) error {
	return b.next.VerifyConnectivity(ctx)
}

// Close implements GraphStore.
func (b *BreakerStore) Close(ctx context.Context) error { return b.next.Close(ctx) }

var _ GraphStore = (*BreakerStore)(nil)
