package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// one limiter per IP, plus lastSeen for cleanup
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages map<ip, limiter>
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	reqPerMin int
	burst     int
	ttl       time.Duration
}

// reqPerMin e.g. 10, burst 5, ttl 5 minutes (idle IPs get evicted)
func NewIPRateLimiter(reqPerMin, burst int, ttl time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		reqPerMin: reqPerMin,
		burst:     burst,
		ttl:       ttl,
	}
	go rl.cleanupVisitors()
	return rl
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}

	// req/min -> rate.Limit (req/sec)
	rps := float64(rl.reqPerMin) / 60.0
	limiter := rate.NewLimiter(rate.Limit(rps), rl.burst)
	rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

func (rl *IPRateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > rl.ttl {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func RateLimitByIP(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP() // honors X-Forwarded-For when TrustedProxies is set
		limiter := rl.getLimiter(ip)
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too Many Requests",
				"hint":    "Please retry in a few minutes.",
			})
			return
		}
		c.Next()
	}
}

// 10 requests/min/IP, burst 5, limiter kept at most 5 idle minutes
var FormsCreateLimiter = NewIPRateLimiter(10, 5, 5*time.Minute)

// RateLimitFormsCreate guards POST /api/forms
func RateLimitFormsCreate() gin.HandlerFunc {
	return RateLimitByIP(FormsCreateLimiter)
}

// 30 requests/min/IP for public entry submission
var EntriesCreateLimiter = NewIPRateLimiter(30, 10, 5*time.Minute)

// RateLimitEntriesCreate guards POST /api/forms/:id/entries
func RateLimitEntriesCreate() gin.HandlerFunc {
	return RateLimitByIP(EntriesCreateLimiter)
}
