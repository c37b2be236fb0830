package health

import (
	"context"
	"runtime"
	"testing"
)

func TestNewMemoryChecker_Defaults(t *testing.T) {
	m := NewMemoryChecker(MemoryCheckerConfig{WarningThreshold: 0.95, CriticalThreshold: 0.5})
	if m.config.CriticalThreshold < m.config.WarningThreshold {
		t.Errorf("critical %v below warning %v", m.config.CriticalThreshold, m.config.WarningThreshold)
	}
	if m.Name() != "memory" {
		t.Errorf("Name() = %q", m.Name())
	}
}

func TestMemoryChecker_Thresholds(t *testing.T) {
	tests := []struct {
		heap uint64
		want Status
	}{
		{heap: 100, want: StatusHealthy},
		{heap: 850, want: StatusDegraded},
		{heap: 990, want: StatusUnhealthy},
	}

	for _, tt := range tests {
		m := NewMemoryChecker(MemoryCheckerConfig{MaxAlloc: 1000})
		m.read = func(s *runtime.MemStats) { s.HeapAlloc = tt.heap }

		r := m.Check(context.Background())
		if r.Status != tt.want {
			t.Errorf("heap %d: Status = %v, want %v (%s)", tt.heap, r.Status, tt.want, r.Message)
		}
	}
}

func TestMemoryChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := NewMemoryChecker(MemoryCheckerConfig{}).Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
}
