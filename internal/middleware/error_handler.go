package middleware

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jsonres "campusEvents/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error that escapes a handler with the shared
// error envelope. Internal details stay in the log.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			logger.Debug("http error", "status", status, "internal", he.Internal)
		}
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	default:
		logger.Error("unhandled error",
			"method", c.Request().Method,
			"path", c.Path(),
			"trace_id", c.Get("trace_id"),
			"error", err,
		)
	}

	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	if code == "" {
		code = "ERROR"
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, jsonres.Error(code, message, nil))
	}
	if err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}
