package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"paygate-server/internal/infrastructure/config"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

// RateLimitStore 固定ウィンドウのカウンタストア
// 単一プロセスではメモリ実装を使い、水平スケール時は共有ストア実装に差し替える
type RateLimitStore interface {
	// Increment キーのウィンドウ内カウントを加算して加算後の値を返す
	Increment(key string, windowStart time.Time) int
}

// windowCounter 1キー分の固定ウィンドウカウンタ
type windowCounter struct {
	windowStart time.Time
	count       int
}

// MemoryRateLimitStore メモリ上のRateLimitStore実装
type MemoryRateLimitStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

// NewMemoryRateLimitStore 新しいMemoryRateLimitStoreを作成
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		counters: make(map[string]*windowCounter),
	}
}

// Increment キーのウィンドウ内カウントを加算して加算後の値を返す
// ウィンドウが切り替わっていたらカウントをリセットする
func (s *MemoryRateLimitStore) Increment(key string, windowStart time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[key]
	if !ok || !counter.windowStart.Equal(windowStart) {
		counter = &windowCounter{windowStart: windowStart}
		s.counters[key] = counter
	}
	counter.count++
	return counter.count
}

// StartSweeping 失効したカウンタを定期的に掃除するゴルーチンを起動する
func (s *MemoryRateLimitStore) StartSweeping(ctx context.Context, interval, window time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(time.Now().Add(-window))
			}
		}
	}()
}

// sweep 指定時刻より前に始まったウィンドウのカウンタを削除する
func (s *MemoryRateLimitStore) sweep(before time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, counter := range s.counters {
		if counter.windowStart.Before(before) {
			delete(s.counters, key)
		}
	}
}

// RateLimitMiddleware 固定ウィンドウのレートリミットミドルウェア
// クライアントIPごとにウィンドウ内のリクエスト数を数え、超過した場合は
// 429とウィンドウ終了までの秒数をRetry-Afterヘッダーで返す
func RateLimitMiddleware(cfg *config.RateLimitConfig, store RateLimitStore, metrics *otelinfra.Metrics, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}

			now := time.Now()
			windowStart := now.Truncate(cfg.Window)
			key := getClientIP(c)

			count := store.Increment(key, windowStart)
			if count > cfg.RequestsPerWindow {
				retryAfter := int(windowStart.Add(cfg.Window).Sub(now).Seconds()) + 1

				metrics.RecordRateLimited(c.Request().Context(), c.Path())
				logger.Warn(c.Request().Context(), "Request rate limited", map[string]interface{}{
					"client_ip": key,
					"path":      c.Path(),
					"count":     count,
				})

				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{
					Error:   "rate_limited",
					Message: "Too many requests, retry later",
				})
			}

			return next(c)
		}
	}
}
