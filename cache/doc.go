// Package cache provides the content-addressed preview store.
//
// Keys are derived with SHA-256 from content and a canonical option
// serialization (see Keyer). The Store is bounded by entry count, total
// bytes and a fixed TTL, and collapses concurrent misses for the same key
// into a single computation (see Store.GetOrCompute).
package cache
