package middleware

import (
	"fmt"
	"homestay/config"
	"homestay/infras/metrics"
	"homestay/infras/otel"
	"homestay/shared/cache"
	"homestay/shared/constant"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	otelHTTPScopeName = "http"
	unmatchedRoute    = "unmatched"
)

type AppMiddleware interface {
	Tracing(next http.Handler) http.Handler
	Metrics(next http.Handler) http.Handler
	CORS() func(http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
}

type appMiddleware struct {
	otel    otel.Otel
	config  *config.Config
	cache   cache.RedisCache
	metrics *metrics.Metrics
}

func NewAppMiddleware(otel otel.Otel, config *config.Config, cache cache.RedisCache, metrics *metrics.Metrics) AppMiddleware {
	return &appMiddleware{
		otel:    otel,
		config:  config,
		cache:   cache,
		metrics: metrics,
	}
}

func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := a.otel.NewScope(r.Context(), otelHTTPScopeName, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		defer scope.End()

		client := clientKey(r)

		scope.SetAttributes(map[string]any{
			"app.name":        a.config.App.Name,
			"http.path":       r.URL.Path,
			"http.method":     r.Method,
			"http.user_agent": client[1],
			"http.host":       r.Host,
			"http.source":     client[0],
		})

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		scope.SetAttributes(map[string]any{
			"http.route":       routePattern(r),
			"http.status_code": ww.Status(),
		})
	})
}

// Metrics records request counts and latencies labelled by route pattern.
func (a *appMiddleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := routePattern(r)
		a.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		a.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (a *appMiddleware) CORS() func(http.Handler) http.Handler {
	corsConfig := a.config.App.CORS
	if !corsConfig.Enable {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   corsConfig.AllowedOrigins,
		AllowedMethods:   corsConfig.AllowedMethods,
		AllowedHeaders:   append(corsConfig.AllowedHeaders, constant.RequestHeaderIdempotencyKey, constant.RequestHeaderAPIKey),
		ExposedHeaders:   []string{constant.RequestHeaderContentDisposition, constant.RequestHeaderRateLimitRemaining},
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAgeSeconds,
	})
}

// routePattern keeps metric labels bounded by reporting the matched pattern instead of the raw path.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}

	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}

	return unmatchedRoute
}
