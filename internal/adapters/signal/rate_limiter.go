package signal

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IntentLimiter keeps one token bucket per connection: limit intents per
// interval, bursting up to limit.
type IntentLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	limit    int
	interval time.Duration
}

func NewIntentLimiter(limit int, interval time.Duration) *IntentLimiter {
	return &IntentLimiter{
		buckets:  make(map[string]*rate.Limiter),
		limit:    limit,
		interval: interval,
	}
}

// Allow reports whether key may send one more intent. A nil limiter or a
// non-positive limit allows everything.
func (rl *IntentLimiter) Allow(key string) bool {
	if rl == nil || rl.limit <= 0 || rl.interval <= 0 {
		return true
	}
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Every(rl.interval/time.Duration(rl.limit)), rl.limit)
		rl.buckets[key] = b
	}
	rl.mu.Unlock()
	return b.Allow()
}

func (rl *IntentLimiter) Forget(key string) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	delete(rl.buckets, key)
	rl.mu.Unlock()
}
