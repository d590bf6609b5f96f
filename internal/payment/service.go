package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tamkeenorg/tamkeenpay/internal/apperr"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"github.com/tamkeenorg/tamkeenpay/internal/gateway"
	"github.com/tamkeenorg/tamkeenpay/internal/lock"
	"github.com/tamkeenorg/tamkeenpay/pkg/common"
	"github.com/tamkeenorg/tamkeenpay/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TopicPaymentReconciled carries a *domain.Payment after a webhook
// transitions it to paid. The mailer subscribes to it.
const TopicPaymentReconciled = "payment.reconciled"

const (
	createLockTTL  = 30 * time.Second
	webhookLockTTL = 60 * time.Second
)

// Publisher is the event fan-out used after reconciliation, satisfied by
// EventBus.Bus.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Item is one requested basket line. Quantity defaults to 1; prices are
// never accepted from the client.
type Item struct {
	ProductID int64
	Quantity  int
}

type CreateRequest struct {
	ClientName        string
	ClientEmail       string
	ClientPhone       string
	Country           string
	Message           string
	Items             []Item
	ContributionTypes []string
}

type CreateResult struct {
	PaymentID   int64
	SessionID   string
	RedirectURL string
}

// Service orchestrates payment creation and webhook reconciliation. It is
// the sole writer of payment and session status fields; cross-process
// serialization comes from the distributed lock, not in-process state.
type Service struct {
	products ProductRepository
	payments PaymentRepository
	sessions SessionRepository
	gateway  gateway.CheckoutGateway
	locker   lock.Locker
	events   Publisher
	currency string
}

func NewService(
	products ProductRepository,
	payments PaymentRepository,
	sessions SessionRepository,
	gw gateway.CheckoutGateway,
	locker lock.Locker,
	events Publisher,
	currency string,
) *Service {
	if currency == "" {
		currency = domain.CurrencyTRY
	}
	return &Service{
		products: products,
		payments: payments,
		sessions: sessions,
		gateway:  gw,
		locker:   locker,
		events:   events,
		currency: currency,
	}
}

func (s *Service) validateCreate(req *CreateRequest) error {
	if req.ClientName == "" || req.ClientEmail == "" || req.ClientPhone == "" || req.Country == "" {
		return apperr.New(apperr.KindValidation, "missing or invalid fields")
	}
	if len(req.Items) == 0 {
		return apperr.New(apperr.KindValidation, "at least one product is required")
	}
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return apperr.New(apperr.KindValidation, "missing or invalid fields")
		}
	}
	for _, ct := range req.ContributionTypes {
		if !domain.ValidCategory(ct) {
			return apperr.New(apperr.KindValidation, "unknown contribution type: "+ct)
		}
	}
	return nil
}

// Create runs the synchronous half of the checkout workflow. On success the
// payment stays pending until the webhook arrives; the caller only gets the
// provider redirect URL.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := s.validateCreate(&req); err != nil {
		return nil, err
	}

	key := lock.PaymentKey(req.ClientPhone)
	token, acquired, err := s.locker.Acquire(ctx, key, createLockTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "lock service unavailable")
	}
	if !acquired {
		metrics.LockContention.WithLabelValues("payment").Inc()
		return nil, apperr.New(apperr.KindLockContention, "you have a pending payment request, please wait")
	}
	defer s.release(ctx, key, token)

	ids := make([]int64, 0, len(req.Items))
	quantities := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		quantities[item.ProductID] = qty
	}

	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "failed to load products")
	}
	// Exact count match detects missing, invalid and duplicated ids alike.
	if len(products) != len(ids) {
		return nil, apperr.New(apperr.KindValidation, "one or more products are invalid")
	}

	total := decimal.Zero
	lines := make([]gateway.Line, 0, len(products))
	for _, p := range products {
		qty := quantities[p.ID]
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
		lines = append(lines, gateway.Line{Product: p, Quantity: qty})
	}

	now := time.Now()
	pay := &domain.Payment{
		ID:                common.UUIDint64(),
		ClientName:        req.ClientName,
		ClientEmail:       req.ClientEmail,
		ClientPhone:       req.ClientPhone,
		Country:           req.Country,
		ProductIDs:        ids,
		ContributionTypes: req.ContributionTypes,
		Method:            domain.MethodIyzico,
		PaymentStatus:     domain.PaymentStatusPending,
		Total:             total,
		Currency:          s.currency,
		Message:           req.Message,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "failed to create payment record")
	}
	metrics.PaymentsCreated.Inc()

	// The session id doubles as the gateway conversation id, so it must be
	// generated here rather than by the database.
	sessionID := common.UUID()
	session := &domain.PaymentSession{
		ID:        sessionID,
		PaymentID: pay.ID,
		Status:    domain.SessionStatusPending,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		// The pending payment row is left in place for manual reconciliation.
		return nil, apperr.Wrap(apperr.KindStore, err, "failed to create payment session")
	}

	res, ok := s.gateway.InitCheckout(ctx, pay, lines, sessionID)
	if !ok {
		metrics.GatewayInitFailures.Inc()
		if cerr := s.sessions.UpdateStatus(ctx, sessionID, domain.SessionStatusFailed,
			"failed to create checkout session"); cerr != nil {
			zap.L().Error("compensating session update failed",
				zap.String("session_id", sessionID), zap.Error(cerr))
		}
		return nil, apperr.New(apperr.KindGateway, "payment session could not be started")
	}

	if err := s.sessions.SetProviderID(ctx, sessionID, res.ConversationID); err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "failed to update payment session")
	}
	if err := s.payments.SetProviderID(ctx, pay.ID, res.ConversationID); err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "failed to update payment record")
	}

	zap.L().Info("payment created",
		zap.Int64("payment_id", pay.ID),
		zap.String("session_id", sessionID),
		zap.String("total", total.StringFixed(2)),
		zap.String("currency", s.currency))

	return &CreateResult{
		PaymentID:   pay.ID,
		SessionID:   sessionID,
		RedirectURL: res.PaymentPageURL,
	}, nil
}

// HandleWebhook runs the asynchronous half: verify with the provider, then
// transition session and payment to their terminal states. Deliveries for an
// already-terminal session are acknowledged without side effects.
func (s *Service) HandleWebhook(ctx context.Context, token, conversationID string) error {
	if token == "" || conversationID == "" {
		return apperr.New(apperr.KindValidation, "missing token or conversationId")
	}

	key := lock.WebhookKey(conversationID)
	lockToken, acquired, err := s.locker.Acquire(ctx, key, webhookLockTTL)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "lock service unavailable")
	}
	if !acquired {
		metrics.LockContention.WithLabelValues("webhook").Inc()
		return apperr.New(apperr.KindLockContention, "already processing")
	}
	defer s.release(ctx, key, lockToken)

	verification := s.gateway.VerifyCheckout(ctx, token, conversationID)

	session, pay, err := s.sessions.GetWithPayment(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "session not found")
		}
		return apperr.Wrap(apperr.KindStore, err, "failed to load payment session")
	}

	if session.Terminal() {
		zap.L().Info("webhook re-delivery for terminal session ignored",
			zap.String("session_id", session.ID),
			zap.String("status", session.Status))
		metrics.WebhooksProcessed.WithLabelValues("duplicate").Inc()
		return nil
	}

	if !verification.OK {
		if err := s.sessions.UpdateStatus(ctx, session.ID, domain.SessionStatusFailed,
			"verification failed"); err != nil {
			return apperr.Wrap(apperr.KindStore, err, "failed to update payment session")
		}
		if err := s.payments.SetStatus(ctx, pay.ID, domain.PaymentStatusCancelled); err != nil {
			return apperr.Wrap(apperr.KindStore, err, "failed to update payment record")
		}
		metrics.WebhooksProcessed.WithLabelValues("failed").Inc()
		return apperr.New(apperr.KindValidation, "payment verification failed")
	}

	if err := s.sessions.UpdateStatus(ctx, session.ID, domain.SessionStatusSucceeded, ""); err != nil {
		return apperr.Wrap(apperr.KindStore, err, "failed to update payment session")
	}
	if err := s.payments.MarkPaid(ctx, pay.ID, token); err != nil {
		return apperr.Wrap(apperr.KindStore, err, "failed to update payment record")
	}

	pay.PaymentStatus = domain.PaymentStatusPaid
	pay.ProviderID = token
	if s.events != nil {
		s.events.Publish(TopicPaymentReconciled, pay)
	}

	zap.L().Info("payment reconciled",
		zap.Int64("payment_id", pay.ID),
		zap.String("session_id", session.ID))
	metrics.WebhooksProcessed.WithLabelValues("succeeded").Inc()
	return nil
}

// release runs on every exit path. The request context may already be
// canceled, so the lease cleanup uses a detached context; TTL expiry remains
// the fallback if even that fails.
func (s *Service) release(ctx context.Context, key, token string) {
	if _, err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
		zap.L().Warn("lock release failed, lease will expire by TTL",
			zap.String("key", key), zap.Error(err))
	}
}
