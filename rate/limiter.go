// Package rate keeps a token-bucket limiter per client so one scraper or
// misbehaving browser can't starve the catalog endpoints for everyone.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu      sync.Mutex
	clients map[string]*client
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// New builds a limiter allowing rps requests per second with the given burst
// for each client id. Clients idle longer than idle are evicted by a
// background sweeper; Stop shuts the sweeper down.
func New(rps float64, burst int, idle time.Duration) *Limiter {
	l := &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow reports whether the client identified by id may proceed.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[id]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[id] = c
	}
	c.lastSeen = time.Now()
	return c.bucket.Allow()
}

func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			for id, c := range l.clients {
				if time.Since(c.lastSeen) > l.idle {
					delete(l.clients, id)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Every converts a per-request interval into a requests-per-second value
// suitable for New.
func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
