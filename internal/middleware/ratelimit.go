package middleware

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"
)

// RateLimiterMiddleware holds the rate limiters for each user.
type RateLimiterMiddleware struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	// Rate is the number of events per second.
	rate rate.Limit
	// Burst is the burst size.
	burst int
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(r rate.Limit, b int) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    b,
	}
}

// Middleware must run after Auth.
func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			WriteFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		rl.mu.Lock()
		limiter, exists := rl.limiters[userID]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[userID] = limiter
		}
		rl.mu.Unlock()

		if !limiter.Allow() {
			hlog.FromRequest(r).Warn().Str("user_id", userID).Msg("Rate limit exceeded")
			WriteFailure(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}
