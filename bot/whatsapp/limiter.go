package whatsapp

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRatePerMinute = 30
	defaultRateBurst     = 5
	limiterIdleTTL       = 30 * time.Minute
)

type senderEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SenderLimiter throttles inbound messages per sender phone.
type SenderLimiter struct {
	mu      sync.Mutex
	senders map[string]*senderEntry
	limit   rate.Limit
	burst   int
	swept   time.Time
}

func NewSenderLimiter(perMinute, burst int) *SenderLimiter {
	if perMinute <= 0 {
		perMinute = defaultRatePerMinute
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}
	return &SenderLimiter{
		senders: make(map[string]*senderEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		swept:   time.Now(),
	}
}

func (l *SenderLimiter) Allow(sender string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.swept) > limiterIdleTTL {
		for key, entry := range l.senders {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.senders, key)
			}
		}
		l.swept = now
	}

	entry, exists := l.senders[sender]
	if !exists {
		entry = &senderEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.senders[sender] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}
