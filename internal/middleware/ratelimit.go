package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/platform/logger"
	"vet-practice-api/internal/platform/metrics"
)

var ErrRateLimited = apperr.New(apperr.KindTooManyRequests, "RATE_LIMITED", "too many requests, slow down")

// Counter es lo que el limiter necesita del store compartido (redis).
type Counter interface {
	IncrWithExpire(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// RateLimit limita las escrituras por identidad (o IP sin identidad) en
// ventanas fijas de un minuto. Lecturas no cuentan. Si el counter falla el
// request pasa.
func RateLimit(counter Counter, cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	const window = time.Minute
	return func(next http.Handler) http.Handler {
		if counter == nil || cfg.RequestsPerMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := "ratelimit:" + clientKey(r)
			count, err := counter.IncrWithExpire(r.Context(), key, window)
			if err != nil {
				log.Warn("rate limit counter unavailable", map[string]any{"err": err})
				next.ServeHTTP(w, r)
				return
			}

			limit := cfg.RequestsPerMinute
			remaining := max(limit-int(count), 0)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > limit {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey usa el subject autenticado; si no hay, la IP (RealIP ya corrió).
func clientKey(r *http.Request) string {
	if c, ok := GetClaims(r.Context()); ok && c.UserID != "" {
		return "sub:" + c.UserID
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.HasSuffix(host, "]") {
		host = host[:i]
	}
	return "ip:" + host
}
