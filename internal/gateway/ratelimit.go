package gateway

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between network calls per logical
// endpoint. Allow never blocks: it reports whether a call may proceed now.
// Time is passed explicitly to the underlying limiter so rate-window
// boundaries can be tested deterministically.
type Limiter struct {
	mu            sync.Mutex
	limiters      map[string]*rate.Limiter
	windows       map[string]time.Duration
	defaultWindow time.Duration
	now           func() time.Time
}

// NewLimiter creates a Limiter. windows maps endpoint names to their minimum
// call interval; endpoints not listed use defaultWindow. A nil clock
// defaults to time.Now.
func NewLimiter(windows map[string]time.Duration, defaultWindow time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	if defaultWindow <= 0 {
		defaultWindow = 30 * time.Second
	}
	return &Limiter{
		limiters:      make(map[string]*rate.Limiter),
		windows:       windows,
		defaultWindow: defaultWindow,
		now:           now,
	}
}

// Allow reports whether a network call to endpoint may proceed, consuming
// the window if so.
func (l *Limiter) Allow(endpoint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[endpoint]
	if !ok {
		w := l.windows[endpoint]
		if w <= 0 {
			w = l.defaultWindow
		}
		lim = rate.NewLimiter(rate.Every(w), 1)
		l.limiters[endpoint] = lim
	}
	return lim.AllowN(l.now(), 1)
}
