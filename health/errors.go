package health

import "errors"

var (
	// ErrCheckFailed marks a resource check past its critical threshold.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported when a checker outlives the aggregator
	// timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for unknown names.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrProbeFailed wraps the error returned by a ProbeChecker's probe.
	ErrProbeFailed = errors.New("health: probe failed")
)
