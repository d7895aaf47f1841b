package middleware

import (
	"strconv"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proconnect_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// AppErrors counts error responses by application error code.
	AppErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proconnect_app_errors_total",
		Help: "Total number of error responses by code and status",
	}, []string{"code", "status"})

	// PostEvents counts post mutations by kind.
	PostEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proconnect_post_events_total",
		Help: "Total number of post mutations by kind",
	}, []string{"event"})

	// CacheLookups counts profile cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proconnect_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. The collector
// registers with the default Prometheus registry, so it is created once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies for every route
// except the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}

// RecordAppError increments the error counter for an error response.
func RecordAppError(code string, status int) {
	AppErrors.WithLabelValues(code, strconv.Itoa(status)).Inc()
}
