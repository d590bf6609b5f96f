package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tamkeenorg/tamkeenpay/internal/webserver"
)

func registerHealthRoutes() {
	webserver.ApiGET("/health", getHealth)
}

func getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"name":   "tamkeenpay",
		"time":   time.Now().Format(time.RFC3339),
	})
}
