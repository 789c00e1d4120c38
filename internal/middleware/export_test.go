package middleware

import "time"

func (l *KeyedRateLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	l.lastSweep = now()
}
