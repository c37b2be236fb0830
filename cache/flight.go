package cache

import (
	"context"
	"fmt"
)

// ComputeFunc produces the entry for a key on a miss.
//
// The context passed to ComputeFunc is detached from the cancellation of
// the caller that started the flight: a disconnecting caller does not
// abort a render other callers may be waiting on. Deadlines belong inside
// the compute function.
type ComputeFunc func(ctx context.Context) (Entry, error)

// Outcome describes how GetOrCompute satisfied a call.
type Outcome int

const (
	// OutcomeHit means the entry was already stored.
	OutcomeHit Outcome = iota
	// OutcomeComputed means this call ran the computation.
	OutcomeComputed
	// OutcomeShared means this call joined a computation started by
	// another caller.
	OutcomeShared
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeComputed:
		return "computed"
	case OutcomeShared:
		return "shared"
	default:
		return "unknown"
	}
}

// GetOrCompute returns the entry for key, running compute at most once
// concurrently per key on a miss.
//
// Callers that arrive while a computation for the same key is in flight
// wait for it and receive the same result. A failed computation is
// returned to every waiter, nothing is stored, and the next call for the
// key starts over. If ctx ends before the result is ready the call
// returns ctx.Err() while the computation keeps running.
func (s *Store) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (Entry, Outcome, error) {
	if s == nil {
		return Entry{}, OutcomeComputed, ErrNilStore
	}
	if compute == nil {
		return Entry{}, OutcomeComputed, ErrNilCompute
	}
	if err := ValidateKey(key); err != nil {
		return Entry{}, OutcomeComputed, err
	}

	if e, ok := s.Get(key); ok {
		return e, OutcomeHit, nil
	}

	detached := context.WithoutCancel(ctx)
	ran, peeked := false, false

	ch := s.flights.DoChan(string(key), func() (v any, err error) {
		ran = true

		// A flight for this key may have completed between our Get and
		// joining the group.
		if e, ok := s.lru.Peek(key); ok {
			peeked = true
			return e, nil
		}

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrComputePanic, r)
			}
		}()

		s.computed.Add(1)
		e, err := compute(detached)
		if err != nil {
			return nil, err
		}
		if len(e.Artifact) == 0 {
			return nil, ErrEmptyArtifact
		}
		e = s.prepare(key, e)
		s.Put(key, e)
		return e, nil
	})

	select {
	case res := <-ch:
		outcome := OutcomeComputed
		switch {
		case peeked:
			outcome = OutcomeHit
		case !ran:
			outcome = OutcomeShared
			s.shared.Add(1)
		}
		if res.Err != nil {
			return Entry{}, outcome, res.Err
		}
		e, _ := res.Val.(Entry)
		return e.Clone(), outcome, nil
	case <-ctx.Done():
		return Entry{}, OutcomeShared, ctx.Err()
	}
}
