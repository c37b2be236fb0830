package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrCompute_ThenGet(t *testing.T) {
	s := NewStore(DefaultPolicy())
	ctx := context.Background()

	var calls atomic.Int32
	compute := func(context.Context) (Entry, error) {
		calls.Add(1)
		return entry("<svg>hello</svg>"), nil
	}

	got, outcome, err := s.GetOrCompute(ctx, "key", compute)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if outcome != OutcomeComputed {
		t.Errorf("outcome = %v, want computed", outcome)
	}

	cached, ok := s.Get("key")
	if !ok {
		t.Fatal("Get after GetOrCompute should hit")
	}
	if !cached.Equal(got) {
		t.Errorf("Get() = %+v, want %+v", cached, got)
	}

	again, outcome, err := s.GetOrCompute(ctx, "key", compute)
	if err != nil {
		t.Fatalf("second GetOrCompute() error = %v", err)
	}
	if outcome != OutcomeHit {
		t.Errorf("second outcome = %v, want hit", outcome)
	}
	if !again.Equal(got) {
		t.Error("second result differs from first")
	}
	if calls.Load() != 1 {
		t.Errorf("compute called %d times, want 1", calls.Load())
	}
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	s := NewStore(DefaultPolicy())
	ctx := context.Background()

	const callers = 64

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	compute := func(context.Context) (Entry, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return entry("<svg>popular</svg>"), nil
	}

	var wg sync.WaitGroup
	results := make([]Entry, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = s.GetOrCompute(ctx, "popular", compute)
		}(i)
	}

	<-started
	// Give the remaining callers time to join the flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("compute executed %d times, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if !results[i].Equal(results[0]) {
			t.Errorf("caller %d got %q, want %q", i, results[i].Artifact, results[0].Artifact)
		}
	}
	if s.Stats().Flights != 1 {
		t.Errorf("Flights = %d, want 1", s.Stats().Flights)
	}
}

func TestGetOrCompute_ErrorPropagatesAndClears(t *testing.T) {
	s := NewStore(DefaultPolicy())
	ctx := context.Background()
	boom := errors.New("encoder exploded")

	const callers = 8
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	failing := func(context.Context) (Entry, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return Entry{}, boom
	}

	var wg sync.WaitGroup
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.GetOrCompute(ctx, "key", failing)
		}(i)
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("caller %d error = %v, want %v", i, err, boom)
		}
	}
	if _, ok := s.Get("key"); ok {
		t.Fatal("failed computation must not leave an entry")
	}

	got, outcome, err := s.GetOrCompute(ctx, "key", func(context.Context) (Entry, error) {
		return entry("<svg>retry</svg>"), nil
	})
	if err != nil {
		t.Fatalf("retry GetOrCompute() error = %v", err)
	}
	if outcome != OutcomeComputed || string(got.Artifact) != "<svg>retry</svg>" {
		t.Errorf("retry got %q (%v)", got.Artifact, outcome)
	}
}

func TestGetOrCompute_CallerCancelDoesNotAbortFlight(t *testing.T) {
	s := NewStore(DefaultPolicy())

	release := make(chan struct{})
	done := make(chan struct{})
	var sawCancel atomic.Bool

	compute := func(ctx context.Context) (Entry, error) {
		defer close(done)
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return entry("<svg>late</svg>"), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := s.GetOrCompute(ctx, "key", compute)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("GetOrCompute() error = %v, want context.Canceled", err)
	}

	close(release)
	<-done

	if sawCancel.Load() {
		t.Error("compute observed the caller's cancellation")
	}

	// The flight stores its result shortly after compute returns.
	deadline := time.Now().Add(time.Second)
	for !s.Contains("key") {
		if time.Now().After(deadline) {
			t.Fatal("abandoned flight did not populate the store")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetOrCompute_PanicBecomesError(t *testing.T) {
	s := NewStore(DefaultPolicy())

	_, _, err := s.GetOrCompute(context.Background(), "key", func(context.Context) (Entry, error) {
		panic("bad encoder")
	})
	if !errors.Is(err, ErrComputePanic) {
		t.Fatalf("error = %v, want ErrComputePanic", err)
	}
	if _, ok := s.Get("key"); ok {
		t.Error("panicking computation must not leave an entry")
	}
}

func TestGetOrCompute_Validation(t *testing.T) {
	s := NewStore(DefaultPolicy())
	ctx := context.Background()

	if _, _, err := s.GetOrCompute(ctx, "", func(context.Context) (Entry, error) { return entry("x"), nil }); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("empty key error = %v, want ErrInvalidKey", err)
	}
	if _, _, err := s.GetOrCompute(ctx, "key", nil); !errors.Is(err, ErrNilCompute) {
		t.Errorf("nil compute error = %v, want ErrNilCompute", err)
	}
	if _, _, err := s.GetOrCompute(ctx, "key", func(context.Context) (Entry, error) { return Entry{}, nil }); !errors.Is(err, ErrEmptyArtifact) {
		t.Errorf("empty artifact error = %v, want ErrEmptyArtifact", err)
	}

	var nilStore *Store
	if _, _, err := nilStore.GetOrCompute(ctx, "key", func(context.Context) (Entry, error) { return entry("x"), nil }); !errors.Is(err, ErrNilStore) {
		t.Errorf("nil store error = %v, want ErrNilStore", err)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeHit:      "hit",
		OutcomeComputed: "computed",
		OutcomeShared:   "shared",
		Outcome(42):     "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}
