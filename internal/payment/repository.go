package payment

import (
	"context"

	"github.com/tamkeenorg/tamkeenpay/internal/domain"
)

// ProductRepository is the read-only slice of the catalog the orchestrator
// needs: one batch resolve per creation request.
type ProductRepository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

// PaymentRepository persists payments. Status writes go through the
// orchestrator only; the store enforces column constraints, not transitions.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error

	// SetProviderID records the gateway conversation id after a successful
	// checkout initialization.
	SetProviderID(ctx context.Context, id int64, providerID string) error

	// SetStatus updates payment_status (and updated_at).
	SetStatus(ctx context.Context, id int64, status string) error

	// MarkPaid sets payment_status=paid and records the provider reference
	// from the verified callback in one write.
	MarkPaid(ctx context.Context, id int64, providerRef string) error
}

// SessionRepository persists payment sessions keyed by the orchestrator
// generated conversation id.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.PaymentSession) error

	// GetWithPayment loads a session and its payment by conversation id.
	GetWithPayment(ctx context.Context, id string) (*domain.PaymentSession, *domain.Payment, error)

	// UpdateStatus transitions the session, recording an error message on
	// failure paths (pass "" otherwise).
	UpdateStatus(ctx context.Context, id, status, errorMessage string) error

	// SetProviderID records the gateway conversation id on the session.
	SetProviderID(ctx context.Context, id, providerID string) error
}

// Notifier is the outbound email collaborator. Both calls are best-effort;
// failures never block the webhook response.
type Notifier interface {
	NotifyClient(p *domain.Payment)
	NotifyAdmin(p *domain.Payment)
}
