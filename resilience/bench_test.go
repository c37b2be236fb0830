package resilience

import (
	"context"
	"testing"
	"time"
)

func BenchmarkExecutor_Execute(b *testing.B) {
	exec := NewExecutor(
		WithBulkhead(NewBulkhead(BulkheadConfig{MaxConcurrent: 64})),
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})),
		WithTimeout(time.Second),
	)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exec.Execute(ctx, succeed)
	}
}

func BenchmarkKeyedLimiter_Allow(b *testing.B) {
	kl := NewKeyedLimiter(KeyedLimiterConfig{Rate: 1e9, Burst: 1 << 30})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		kl.Allow("198.51.100.1")
	}
}
