package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tamkeenorg/tamkeenpay/internal/apperr"
	"go.uber.org/zap"
)

// ErrorBody is the failure envelope shared by handlers and the central
// error handler.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// statusOf is the single place mapping error kinds to HTTP status codes.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindLockContention:
		return http.StatusTooManyRequests
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindGateway:
		return http.StatusBadGateway
	case apperr.KindStore:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders classified errors with their kind's status and code.
// Unclassified errors become a generic 500; the underlying cause is only
// exposed in development mode.
func errorHandler(cfg interface{ IsDevelopment() bool }) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			body := ErrorBody{Code: "HTTP_ERROR", Message: http.StatusText(he.Code)}
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			}
			_ = c.JSON(he.Code, body)
			return
		}

		kind := apperr.KindOf(err)
		status := statusOf(kind)
		body := ErrorBody{
			Code:    kind.Code(),
			Message: apperr.MessageOf(err),
		}
		if kind == apperr.KindUnknown {
			body.Message = "something went wrong"
			zap.L().Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		if cfg.IsDevelopment() {
			body.Details = err.Error()
		}

		if err := c.JSON(status, body); err != nil {
			zap.L().Error("error response write failed", zap.Error(err))
		}
	}
}
