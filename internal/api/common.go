// Package api registers the HTTP handlers: the payment workflow endpoints
// plus the catalog CRUD consumed by the admin frontend.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tamkeenorg/tamkeenpay/internal/webserver"
	"gorm.io/gorm"
)

// Init stores the payment service and registers all routes. Call after
// webserver.Init.
func Init(svc PaymentService) {
	paymentService = svc
	registerHealthRoutes()
	registerProductRoutes()
	registerPaymentRoutes()
}

type okBody struct {
	Code string      `json:"code"`
	Data interface{} `json:"data,omitempty"`
}

type pagedBody struct {
	Code     string      `json:"code"`
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, okBody{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, webserver.ErrorBody{Code: code, Message: message, Details: details})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedBody{
		Code: "OK", Items: items, Total: total, Page: page, PageSize: pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// handleValidationError renders field-level validator failures as a 400.
func handleValidationError(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+":"+fe.Tag())
		}
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing or invalid fields", fields)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing or invalid fields", nil)
}

// GetDB re-exports the request-scoped handle for catalog handlers.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}
