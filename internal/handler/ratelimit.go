package handler

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/axlesai/floorplan-engine/pkg/response"
)

// RateLimiter is a fixed-window per-dealer request limiter backed by redis.
// Unidentified requests fall through to the auth check in the handlers.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	logger zerolog.Logger
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
		logger: logger.With().Str("component", "rate_limiter").Logger(),
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealer := r.Header.Get(DealerHeader)
		if dealer == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := "floorplan:ratelimit:" + dealer
		count, err := rl.redis.Incr(r.Context(), key).Result()
		if err != nil {
			// Fail open: the limiter is protection, not a gate.
			rl.logger.Warn().Err(err).Msg("rate limit counter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.redis.Expire(r.Context(), key, rl.window)
		}

		if count > int64(rl.limit) {
			response.TooManyRequests(w, "Too many requests, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}
