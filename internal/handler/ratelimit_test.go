package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func limitedHandler(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rl := NewRateLimiter(client, limit, time.Minute, zerolog.Nop())

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return rl.Middleware(ok), mr
}

func TestRateLimiterBlocksAboveTheLimit(t *testing.T) {
	h, _ := limitedHandler(t, 3)
	dealer := uuid.New().String()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/floor-plan/accounts", nil)
		req.Header.Set(DealerHeader, dealer)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest("GET", "/floor-plan/accounts", nil)
	req.Header.Set(DealerHeader, dealer)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterIsPerDealer(t *testing.T) {
	h, _ := limitedHandler(t, 1)

	for _, dealer := range []string{uuid.New().String(), uuid.New().String()} {
		req := httptest.NewRequest("GET", "/floor-plan/accounts", nil)
		req.Header.Set(DealerHeader, dealer)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterResetsAfterTheWindow(t *testing.T) {
	h, mr := limitedHandler(t, 1)
	dealer := uuid.New().String()

	req := httptest.NewRequest("GET", "/floor-plan/accounts", nil)
	req.Header.Set(DealerHeader, dealer)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	mr.FastForward(2 * time.Minute)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	rl := NewRateLimiter(client, 1, time.Minute, zerolog.Nop())
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/floor-plan/accounts", nil)
		req.Header.Set(DealerHeader, uuid.New().String())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterSkipsUnidentifiedRequests(t *testing.T) {
	h, _ := limitedHandler(t, 1)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/floor-plan/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
