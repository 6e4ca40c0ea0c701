package middleware

import (
	"campusEvents/business/recommend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// TraceID reuses an inbound X-Request-ID or mints one, echoes it on the
// response and puts it on the request context for log lines.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(HeaderRequestID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}

			c.Response().Header().Set(HeaderRequestID, id)
			c.Set("trace_id", id)
			c.SetRequest(req.WithContext(recommend.WithTraceID(req.Context(), id)))

			return next(c)
		}
	}
}
