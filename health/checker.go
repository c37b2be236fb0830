package health

import (
	"context"
	"net/http"
	"time"
)

// Status is a checker verdict. Larger values are worse.
type Status int

const (
	StatusHealthy Status = iota
	// StatusDegraded means previews are still served but something is
	// under pressure (cache churn, heap near budget).
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{
	StatusHealthy:   "healthy",
	StatusDegraded:  "degraded",
	StatusUnhealthy: "unhealthy",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// HTTPStatus is the probe response code for s. A degraded instance stays
// in rotation.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusHealthy, StatusDegraded:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

// Result is one checker's verdict.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

func newResult(s Status, msg string, err error) Result {
	return Result{Status: s, Message: msg, Error: err, Timestamp: time.Now()}
}

func Healthy(message string) Result  { return newResult(StatusHealthy, message, nil) }
func Degraded(message string) Result { return newResult(StatusDegraded, message, nil) }

// Unhealthy records err as the cause.
func Unhealthy(message string, err error) Result {
	return newResult(StatusUnhealthy, message, err)
}

// WithDetails returns r carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker reports on one dependency of the preview service.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc is a named Checker backed by a function.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string                     { return f.name }
func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

var (
	_ Checker = (*CheckerFunc)(nil)
	_ Checker = (*MemoryChecker)(nil)
	_ Checker = (*CacheChecker)(nil)
	_ Checker = (*ProbeChecker)(nil)
)
