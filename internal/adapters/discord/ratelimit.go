package discord

import (
	"sync"
	"time"
)

// Once the map holds this many users, an Allow call sweeps the expired
// entries inline. Cheaper than a background goroutine for a limiter
// that only ever sees rules-button clicks.
const limiterSweepSize = 512

// userLimiter debounces the rules button, one window per user.
type userLimiter struct {
	mu   sync.Mutex
	next map[string]time.Time
	win  time.Duration
}

func newUserLimiter(window time.Duration) *userLimiter {
	return &userLimiter{next: map[string]time.Time{}, win: window}
}

func (l *userLimiter) Allow(userID string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.next[userID]; ok && now.Before(until) {
		return false
	}
	if len(l.next) >= limiterSweepSize {
		for id, until := range l.next {
			if now.After(until) {
				delete(l.next, id)
			}
		}
	}
	l.next[userID] = now.Add(l.win)
	return true
}
