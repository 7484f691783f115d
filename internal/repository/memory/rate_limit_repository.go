package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// RateLimitRepository counts events per key in a sliding window. Idle keys
// expire from the cache one window after their last event.
type RateLimitRepository struct {
	mu     sync.Mutex
	cache  *cache.Cache
	max    int
	window time.Duration
	now    func() time.Time
}

func NewRateLimitRepository(max int, window time.Duration) *RateLimitRepository {
	return &RateLimitRepository{
		cache:  cache.New(window, 2*window),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow records an event for key and reports whether it fits the window.
// Rejected events are not recorded.
func (r *RateLimitRepository) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var events []time.Time
	if x, found := r.cache.Get(key); found {
		events = x.([]time.Time)
	}

	kept := events[:0]
	for _, at := range events {
		if now.Sub(at) <= r.window {
			kept = append(kept, at)
		}
	}
	if len(kept) >= r.max {
		r.cache.Set(key, kept, r.window)
		return false
	}

	kept = append(kept, now)
	r.cache.Set(key, kept, r.window)
	return true
}
