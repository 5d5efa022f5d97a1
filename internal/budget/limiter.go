package budget

import "time"

// Limiter is the interface both the in-process Window and the Redis-backed
// DistributedWindow satisfy, letting governance and injection code stay
// agnostic to which backing store a deployment chose.
type Limiter interface {
	Allow(now time.Time) bool
	Record(now time.Time)
	TryRecord(now time.Time) bool
	Remaining(now time.Time) int
}

var (
	_ Limiter = (*Window)(nil)
	_ Limiter = (*DistributedWindow)(nil)
)
