package middleware

import (
	"homestay/shared"
	"homestay/shared/constant"
	"homestay/transport/http/response"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
	unknownClient     = "unknown"
)

// RateLimit counts requests per client in fixed windows. Redis errors let the request through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds

			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, clientKey(r)...)

			count, err := a.cache.Incr(r.Context(), cacheKey, windowSecs)
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(max(0, int64(maxReqs)-count), 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			if count > int64(maxReqs) {
				w.Header().Set(constant.RequestHeaderRetryAfter, strconv.Itoa(windowSecs))
				response.WithRequestLimitExceeded(w)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by address and user agent. RemoteAddr already carries
// the forwarded address once chi's RealIP has run.
func clientKey(r *http.Request) []string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if host == "" {
		host = unknownClient
	}

	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == "" {
		ua = unknownClient
	}

	return []string{host, ua}
}
