package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore keeps one fixed-interval limiter per key (a hostname for the
// fetcher). The map is the only shared mutable state and is guarded by mu.
type LimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	interval time.Duration
	burst    int
}

func NewLimiterStore(minInterval time.Duration, burst int) *LimiterStore {
	return &LimiterStore{
		limiters: make(map[string]*rate.Limiter),
		interval: minInterval,
		burst:    burst,
	}
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists := s.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Every(s.interval), s.burst)
	s.limiters[key] = limiter
	return limiter
}

// Wait blocks until the key's limiter grants a slot or the context is done.
func (s *LimiterStore) Wait(ctx context.Context, key string) error {
	return s.GetLimiter(key).Wait(ctx)
}
