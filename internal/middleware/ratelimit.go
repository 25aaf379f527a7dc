package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"tetrabet_backend/pkg/resp"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// RateLimiter - ограничение запросов по IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiterEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	clock    clockwork.Clock
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter - perMinute запросов в минуту с запасом burst.
// Записи IP, не появлявшиеся дольше ttl, удаляются при следующих обращениях
func NewRateLimiter(perMinute, burst int, clock clockwork.Clock) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		ttl:      5 * time.Minute,
		clock:    clock,
	}
}

// AllowWithRetry - можно ли пропустить запрос, и если нет, через сколько повторить
func (rl *RateLimiter) AllowWithRetry(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	rl.evict(now)

	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-rl.ttl)
	for ip, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

// RateLimit - middleware, отвечающий 429 с Retry-After
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := rl.AllowWithRetry(clientIP(r))
			if !allowed {
				seconds := max(int(retryAfter.Seconds()), 1)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
				resp.WriteError(w, http.StatusTooManyRequests,
					fmt.Sprintf("rate limit exceeded, please try again in %d seconds", seconds))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP - адрес TCP-соединения. X-Forwarded-For задает клиент, по нему лимит обходится сменой заголовка
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
