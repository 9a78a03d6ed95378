package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"roadmaptracker/backend/metrics"
)

// MetricsMiddleware records request counts and latency by route pattern, so
// path parameters do not explode label cardinality.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Label values outlive the request; fasthttp reuses the buffers behind
		// c.Method and c.Route().Path.
		method := utils.CopyString(c.Method())
		route := utils.CopyString(c.Route().Path)
		status := responseStatus(c, err)

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// responseStatus is the status the client will see. A *fiber.Error returned
// by a handler is only rendered after the middleware chain unwinds.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
