package middleware

import (
	"net/http"
	"sync"

	"github.com/crumble-bakery/signup-service/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ThrottleMiddleware applies a per-client token bucket at the transport
// layer. It is independent of the signup rate limit, which lives in the
// submission store and counts attempts globally.
type ThrottleMiddleware struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewThrottleMiddleware(cfg config.ThrottleConfig) *ThrottleMiddleware {
	return &ThrottleMiddleware{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
	}
}

func (m *ThrottleMiddleware) Throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.limiter(c.RealIP()).Allow() {
			logrus.WithField("remote_ip", c.RealIP()).Debug("Request throttled")
			c.Response().Header().Set("Retry-After", "1")
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many requests",
			})
		}
		return next(c)
	}
}

func (m *ThrottleMiddleware) limiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	lim, ok := m.limiters[key]
	if !ok {
		lim = rate.NewLimiter(m.rps, m.burst)
		m.limiters[key] = lim
	}
	return lim
}
