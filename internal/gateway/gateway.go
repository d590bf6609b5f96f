// Package gateway adapts the hosted-checkout provider. Transport failures
// and provider rejections both collapse into typed failure results; callers
// treat a failed init as definitive and compensate, never retry.
package gateway

import (
	"context"

	"github.com/tamkeenorg/tamkeenpay/internal/domain"
)

// Line is one basket entry built from a server-fetched product row. Client
// supplied prices never reach the gateway.
type Line struct {
	Product  domain.Product
	Quantity int
}

// InitResult carries the hosted-checkout redirect on success.
type InitResult struct {
	PaymentPageURL string
	ConversationID string
}

// VerifyResult reports the outcome of a checkout verification. Any transport
// error or non-success provider status collapses to OK=false.
type VerifyResult struct {
	OK            bool
	PaymentStatus string
}

type CheckoutGateway interface {
	// InitCheckout starts a hosted checkout using sessionID as both
	// conversation id and basket id. ok=false means the session could not
	// be started and the caller must run its compensating writes.
	InitCheckout(ctx context.Context, payment *domain.Payment, lines []Line, sessionID string) (res InitResult, ok bool)

	// VerifyCheckout retrieves a completed checkout by callback token.
	VerifyCheckout(ctx context.Context, token, conversationID string) VerifyResult
}
