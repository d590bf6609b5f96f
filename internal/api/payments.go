package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tamkeenorg/tamkeenpay/internal/payment"
	"github.com/tamkeenorg/tamkeenpay/internal/webserver"
)

// PaymentService is the orchestrator surface the handlers call.
type PaymentService interface {
	Create(ctx context.Context, req payment.CreateRequest) (*payment.CreateResult, error)
	HandleWebhook(ctx context.Context, token, conversationID string) error
}

var paymentService PaymentService

type productLine struct {
	ProductID int64 `json:"product_id,string" validate:"required"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1"`
}

type paymentPayload struct {
	ClientName        string        `json:"client_name" validate:"required,min=1,max=200"`
	ClientEmail       string        `json:"client_email" validate:"required,email"`
	ClientPhone       string        `json:"client_phone" validate:"required,min=5,max=32"`
	Country           string        `json:"country" validate:"required,min=2,max=8"`
	ProductList       []productLine `json:"product_list" validate:"required,min=1,dive"`
	Message           string        `json:"message" validate:"omitempty,max=1024"`
	ContributionTypes []string      `json:"contribution_types" validate:"omitempty,dive,oneof=camel sheep cow food_supplements meal"`
}

type webhookPayload struct {
	Token          string `json:"token"`
	ConversationID string `json:"conversationId"`
}

// registerPaymentRoutes registers the checkout workflow endpoints
func registerPaymentRoutes() {
	webserver.ApiPOST("/payments", createPayment)
	webserver.ApiPOST("/payments/webhook", paymentWebhook)
}

func createPayment(c echo.Context) error {
	var payload paymentPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	items := make([]payment.Item, 0, len(payload.ProductList))
	for _, line := range payload.ProductList {
		items = append(items, payment.Item{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	result, err := paymentService.Create(c.Request().Context(), payment.CreateRequest{
		ClientName:        payload.ClientName,
		ClientEmail:       payload.ClientEmail,
		ClientPhone:       payload.ClientPhone,
		Country:           payload.Country,
		Message:           payload.Message,
		Items:             items,
		ContributionTypes: payload.ContributionTypes,
	})
	if err != nil {
		// The central error handler maps the error kind to a status code.
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "success",
		"redirect": result.RedirectURL,
	})
}

func paymentWebhook(c echo.Context) error {
	var payload webhookPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse webhook payload", nil)
	}
	if payload.Token == "" || payload.ConversationID == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing token or conversationId", nil)
	}

	if err := paymentService.HandleWebhook(c.Request().Context(), payload.Token, payload.ConversationID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "webhook processed",
	})
}
