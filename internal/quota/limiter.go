// Package quota enforces the free-tier review allowance per caller identity.
package quota

import "sync"

// DefaultLimit is the number of free reviews per identity
const DefaultLimit = 3

// Decision is the outcome of a quota check
type Decision struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// Limiter counts accepted reviews per identity and rejects calls once an
// identity reached the limit. Counts live in memory for the lifetime of the
// limiter; there is no expiry.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
}

// New creates a limiter. A non-positive limit falls back to DefaultLimit.
func New(limit int) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{
		counts: make(map[string]int),
		limit:  limit,
	}
}

// Check consumes one review for key if any remain.
// A rejected check does not change the count.
func (l *Limiter) Check(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.counts[key]
	if current >= l.limit {
		return Decision{Allowed: false, Remaining: 0}
	}

	next := current + 1
	l.counts[key] = next

	return Decision{Allowed: true, Remaining: max(0, l.limit-next)}
}

// Remaining returns how many reviews key may still make without consuming one
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return max(0, l.limit-l.counts[key])
}

// Count returns the number of accepted reviews for key
func (l *Limiter) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key]
}

// Limit returns the configured per-identity limit
func (l *Limiter) Limit() int {
	return l.limit
}

// Reset clears the counts of every identity
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.counts)
}
