package handlers

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// limiter throttles an action per client key (the remote IP).
type limiter interface {
	Allow(ctx context.Context, key string) bool
	RecordFailure(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

type attemptData struct {
	count        int
	firstAttempt time.Time
}

type rateLimiter struct {
	sync.Mutex
	attempts map[string]*attemptData
	blocked  map[string]time.Time
}

func newMemoryLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string]*attemptData),
		blocked:  make(map[string]time.Time),
	}
}

// loginLimiter counts failed logins; signupLimiter counts every registration.
var (
	loginLimiter  limiter = newMemoryLimiter()
	signupLimiter limiter = newMemoryLimiter()
)

const (
	maxAttempts    = 5
	blockDuration  = 15 * time.Minute
	windowDuration = 15 * time.Minute
)

// Allow returns false if the IP is currently blocked.
// It also cleans up expired blocks.
func (r *rateLimiter) Allow(_ context.Context, ip string) bool {
	r.Lock()
	defer r.Unlock()

	if unblockTime, ok := r.blocked[ip]; ok {
		if time.Now().Before(unblockTime) {
			return false
		}
		// Block expired
		delete(r.blocked, ip)
		delete(r.attempts, ip)
	}
	return true
}

// RecordFailure increments the failure count and blocks if threshold reached.
func (r *rateLimiter) RecordFailure(_ context.Context, ip string) {
	r.Lock()
	defer r.Unlock()

	// Cleanup if map gets too large (simple DoS protection)
	if len(r.attempts) > 10000 {
		r.attempts = make(map[string]*attemptData)
	}

	data, exists := r.attempts[ip]
	if !exists || time.Since(data.firstAttempt) > windowDuration {
		r.attempts[ip] = &attemptData{count: 1, firstAttempt: time.Now()}
	} else {
		data.count++
		if data.count >= maxAttempts {
			r.blocked[ip] = time.Now().Add(blockDuration)
		}
	}
}

// Reset clears the counter for an IP (used on successful login).
func (r *rateLimiter) Reset(_ context.Context, ip string) {
	r.Lock()
	defer r.Unlock()
	delete(r.attempts, ip)
	delete(r.blocked, ip)
}

// redisLimiter shares counters between server instances. Redis errors fail
// open: a broken cache must not lock every user out.
type redisLimiter struct {
	rdb    *redis.Client
	prefix string
}

func (l *redisLimiter) attemptsKey(ip string) string { return l.prefix + "attempts:" + ip }
func (l *redisLimiter) blockedKey(ip string) string  { return l.prefix + "blocked:" + ip }

func (l *redisLimiter) Allow(ctx context.Context, ip string) bool {
	n, err := l.rdb.Exists(ctx, l.blockedKey(ip)).Result()
	if err != nil {
		log.WithError(err).Warn("rate limiter: redis unavailable")
		return true
	}
	return n == 0
}

func (l *redisLimiter) RecordFailure(ctx context.Context, ip string) {
	key := l.attemptsKey(ip)
	// The window starts with the first failure; SET NX carries the TTL so a
	// counter can never outlive it.
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, windowDuration)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("rate limiter: redis unavailable")
		return
	}
	if count := incr.Val(); count >= maxAttempts {
		if err := l.rdb.Set(ctx, l.blockedKey(ip), 1, blockDuration).Err(); err != nil {
			log.WithError(err).Warn("rate limiter: could not store block")
		}
	}
}

func (l *redisLimiter) Reset(ctx context.Context, ip string) {
	if err := l.rdb.Del(ctx, l.attemptsKey(ip), l.blockedKey(ip)).Err(); err != nil {
		log.WithError(err).Warn("rate limiter: redis unavailable")
	}
}

// UseRedisLimiters moves login and signup throttling onto rdb.
func UseRedisLimiters(rdb *redis.Client) {
	loginLimiter = &redisLimiter{rdb: rdb, prefix: "cityguard:ratelimit:login:"}
	signupLimiter = &redisLimiter{rdb: rdb, prefix: "cityguard:ratelimit:signup:"}
}

func getClientIP(r *http.Request) string {
	// RemoteAddr is host:port, or a bare IP when RealIP rewrote it behind a
	// trusted proxy
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
