package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tamkeenorg/tamkeenpay/internal/apperr"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"github.com/tamkeenorg/tamkeenpay/internal/gateway"
	"github.com/tamkeenorg/tamkeenpay/internal/lock"
	"gorm.io/gorm"
)

type fakeProducts struct {
	byID map[int64]domain.Product
}

func (f *fakeProducts) ListByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePayments struct {
	created     []*domain.Payment
	providerIDs map[int64]string
	statuses    map[int64]string
	paidRefs    map[int64]string
}

func newFakePayments() *fakePayments {
	return &fakePayments{
		providerIDs: map[int64]string{},
		statuses:    map[int64]string{},
		paidRefs:    map[int64]string{},
	}
}

func (f *fakePayments) Create(_ context.Context, p *domain.Payment) error {
	cp := *p
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakePayments) SetProviderID(_ context.Context, id int64, providerID string) error {
	f.providerIDs[id] = providerID
	return nil
}

func (f *fakePayments) SetStatus(_ context.Context, id int64, status string) error {
	f.statuses[id] = status
	return nil
}

func (f *fakePayments) MarkPaid(_ context.Context, id int64, providerRef string) error {
	f.statuses[id] = domain.PaymentStatusPaid
	f.paidRefs[id] = providerRef
	return nil
}

type fakeSessions struct {
	sessions    map[string]*domain.PaymentSession
	payments    *fakePayments
	providerIDs map[string]string
}

func newFakeSessions(payments *fakePayments) *fakeSessions {
	return &fakeSessions{
		sessions:    map[string]*domain.PaymentSession{},
		payments:    payments,
		providerIDs: map[string]string{},
	}
}

func (f *fakeSessions) Create(_ context.Context, s *domain.PaymentSession) error {
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessions) GetWithPayment(_ context.Context, id string) (*domain.PaymentSession, *domain.Payment, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	for _, p := range f.payments.created {
		if p.ID == s.PaymentID {
			cp := *p
			return s, &cp, nil
		}
	}
	return nil, nil, gorm.ErrRecordNotFound
}

func (f *fakeSessions) UpdateStatus(_ context.Context, id, status, errorMessage string) error {
	s, ok := f.sessions[id]
	if !ok {
		return errors.New("no such session")
	}
	s.Status = status
	s.ErrorMessage = errorMessage
	return nil
}

func (f *fakeSessions) SetProviderID(_ context.Context, id, providerID string) error {
	if _, ok := f.sessions[id]; !ok {
		return errors.New("no such session")
	}
	f.providerIDs[id] = providerID
	return nil
}

type fakeGateway struct {
	initOK      bool
	initCalls   int
	verifyOK    bool
	verifyCalls int
	lastLines   []gateway.Line
	lastConvID  string
}

func (f *fakeGateway) InitCheckout(_ context.Context, _ *domain.Payment, lines []gateway.Line, sessionID string) (gateway.InitResult, bool) {
	f.initCalls++
	f.lastLines = lines
	f.lastConvID = sessionID
	if !f.initOK {
		return gateway.InitResult{}, false
	}
	return gateway.InitResult{
		PaymentPageURL: "https://sandbox.example.com/checkout/" + sessionID,
		ConversationID: sessionID,
	}, true
}

func (f *fakeGateway) VerifyCheckout(_ context.Context, _, _ string) gateway.VerifyResult {
	f.verifyCalls++
	if f.verifyOK {
		return gateway.VerifyResult{OK: true, PaymentStatus: "SUCCESS"}
	}
	return gateway.VerifyResult{OK: false, PaymentStatus: "FAILURE"}
}

type fakeBus struct {
	topics   []string
	payloads []interface{}
}

func (f *fakeBus) Publish(topic string, args ...interface{}) {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, args...)
}

type serviceFixture struct {
	svc      *Service
	products *fakeProducts
	payments *fakePayments
	sessions *fakeSessions
	gateway  *fakeGateway
	bus      *fakeBus
	locker   *lock.MemoryLocker
}

func newFixture() *serviceFixture {
	products := &fakeProducts{byID: map[int64]domain.Product{
		101: {ID: 101, Title: "Sheep Contribution", Price: decimal.NewFromFloat(150.00), Category: domain.CategorySheep},
		102: {ID: 102, Title: "Family Meal Package", Price: decimal.NewFromFloat(10.00), Category: domain.CategoryMeal},
	}}
	payments := newFakePayments()
	sessions := newFakeSessions(payments)
	gw := &fakeGateway{initOK: true, verifyOK: true}
	bus := &fakeBus{}
	locker := lock.NewMemoryLocker()
	return &serviceFixture{
		svc:      NewService(products, payments, sessions, gw, locker, bus, ""),
		products: products,
		payments: payments,
		sessions: sessions,
		gateway:  gw,
		bus:      bus,
		locker:   locker,
	}
}

func validRequest() CreateRequest {
	return CreateRequest{
		ClientName:        "Ayse Yilmaz",
		ClientEmail:       "ayse@example.com",
		ClientPhone:       "+905551112233",
		Country:           "Turkey",
		Items:             []Item{{ProductID: 102, Quantity: 2}},
		ContributionTypes: []string{domain.CategoryMeal},
	}
}

func TestCreateComputesTotalFromCatalogPrices(t *testing.T) {
	fx := newFixture()

	res, err := fx.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.RedirectURL == "" {
		t.Fatal("expected a redirect url")
	}

	if len(fx.payments.created) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(fx.payments.created))
	}
	pay := fx.payments.created[0]
	if got := pay.Total.StringFixed(2); got != "20.00" {
		t.Fatalf("total = %s, want 20.00", got)
	}
	if pay.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", pay.PaymentStatus)
	}
	if pay.Currency != domain.CurrencyTRY {
		t.Fatalf("currency = %s, want TRY", pay.Currency)
	}
}

func TestCreatePersistsProviderIDOnSuccess(t *testing.T) {
	fx := newFixture()

	res, err := fx.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := fx.sessions.providerIDs[res.SessionID]; got != res.SessionID {
		t.Fatalf("session provider id = %q, want %q", got, res.SessionID)
	}
	if got := fx.payments.providerIDs[res.PaymentID]; got != res.SessionID {
		t.Fatalf("payment provider id = %q, want %q", got, res.SessionID)
	}
	if fx.gateway.lastConvID != res.SessionID {
		t.Fatalf("gateway conversation id = %q, want session id %q", fx.gateway.lastConvID, res.SessionID)
	}
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	fx := newFixture()
	req := validRequest()
	req.Items = []Item{{ProductID: 102}, {ProductID: 999}}

	_, err := fx.svc.Create(context.Background(), req)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}
	if len(fx.payments.created) != 0 {
		t.Fatal("no payment should be written for an invalid basket")
	}
	if fx.gateway.initCalls != 0 {
		t.Fatal("gateway must not be called for an invalid basket")
	}
}

func TestCreateRejectsDuplicateProductIDs(t *testing.T) {
	fx := newFixture()
	req := validRequest()
	req.Items = []Item{{ProductID: 102}, {ProductID: 102}}

	_, err := fx.svc.Create(context.Background(), req)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing name", func(r *CreateRequest) { r.ClientName = "" }},
		{"missing email", func(r *CreateRequest) { r.ClientEmail = "" }},
		{"missing phone", func(r *CreateRequest) { r.ClientPhone = "" }},
		{"missing country", func(r *CreateRequest) { r.Country = "" }},
		{"empty basket", func(r *CreateRequest) { r.Items = nil }},
		{"zero product id", func(r *CreateRequest) { r.Items = []Item{{ProductID: 0}} }},
		{"unknown contribution type", func(r *CreateRequest) { r.ContributionTypes = []string{"goat"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture()
			req := validRequest()
			tc.mutate(&req)
			_, err := fx.svc.Create(context.Background(), req)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
			}
		})
	}
}

func TestCreateLockContention(t *testing.T) {
	fx := newFixture()
	req := validRequest()

	_, ok, err := fx.locker.Acquire(context.Background(), lock.PaymentKey(req.ClientPhone), time.Minute)
	if err != nil || !ok {
		t.Fatalf("pre-acquire failed: ok=%v err=%v", ok, err)
	}

	_, err = fx.svc.Create(context.Background(), req)
	if apperr.KindOf(err) != apperr.KindLockContention {
		t.Fatalf("kind = %v, want lock contention", apperr.KindOf(err))
	}
	if len(fx.payments.created) != 0 {
		t.Fatal("no payment should be written while the phone is locked")
	}
}

func TestCreateReleasesLockOnSuccess(t *testing.T) {
	fx := newFixture()
	req := validRequest()

	if _, err := fx.svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := fx.svc.Create(context.Background(), req); err != nil {
		t.Fatalf("second create should succeed after release: %v", err)
	}
}

func TestCreateGatewayFailureFailsSessionKeepsPaymentPending(t *testing.T) {
	fx := newFixture()
	fx.gateway.initOK = false

	_, err := fx.svc.Create(context.Background(), validRequest())
	if apperr.KindOf(err) != apperr.KindGateway {
		t.Fatalf("kind = %v, want gateway", apperr.KindOf(err))
	}

	if len(fx.sessions.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(fx.sessions.sessions))
	}
	for _, s := range fx.sessions.sessions {
		if s.Status != domain.SessionStatusFailed {
			t.Fatalf("session status = %s, want failed", s.Status)
		}
		if s.ErrorMessage == "" {
			t.Fatal("failed session must carry an error message")
		}
	}

	pay := fx.payments.created[0]
	if pay.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", pay.PaymentStatus)
	}
	if _, touched := fx.payments.statuses[pay.ID]; touched {
		t.Fatal("payment status must not change on init failure")
	}
}

func webhookFixture(t *testing.T) (*serviceFixture, *CreateResult) {
	t.Helper()
	fx := newFixture()
	res, err := fx.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return fx, res
}

func TestWebhookSuccessReconcilesAndPublishes(t *testing.T) {
	fx, res := webhookFixture(t)

	if err := fx.svc.HandleWebhook(context.Background(), "tok-abc", res.SessionID); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if got := fx.sessions.sessions[res.SessionID].Status; got != domain.SessionStatusSucceeded {
		t.Fatalf("session status = %s, want succeeded", got)
	}
	if got := fx.payments.statuses[res.PaymentID]; got != domain.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", got)
	}
	if got := fx.payments.paidRefs[res.PaymentID]; got != "tok-abc" {
		t.Fatalf("provider ref = %q, want the callback token", got)
	}
	if len(fx.bus.topics) != 1 || fx.bus.topics[0] != TopicPaymentReconciled {
		t.Fatalf("published topics = %v, want one %s", fx.bus.topics, TopicPaymentReconciled)
	}
	p, ok := fx.bus.payloads[0].(*domain.Payment)
	if !ok {
		t.Fatalf("payload type = %T, want *domain.Payment", fx.bus.payloads[0])
	}
	if p.PaymentStatus != domain.PaymentStatusPaid || p.ProviderID != "tok-abc" {
		t.Fatalf("published payment = %s/%s, want paid/tok-abc", p.PaymentStatus, p.ProviderID)
	}
}

func TestWebhookVerificationFailureCancelsPayment(t *testing.T) {
	fx, res := webhookFixture(t)
	fx.gateway.verifyOK = false

	err := fx.svc.HandleWebhook(context.Background(), "tok-abc", res.SessionID)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}

	if got := fx.sessions.sessions[res.SessionID].Status; got != domain.SessionStatusFailed {
		t.Fatalf("session status = %s, want failed", got)
	}
	if got := fx.payments.statuses[res.PaymentID]; got != domain.PaymentStatusCancelled {
		t.Fatalf("payment status = %s, want cancelled", got)
	}
	if len(fx.bus.topics) != 0 {
		t.Fatal("no event may be published for a failed verification")
	}
}

func TestWebhookUnknownConversation(t *testing.T) {
	fx := newFixture()

	err := fx.svc.HandleWebhook(context.Background(), "tok-abc", "no-such-conversation")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestWebhookMissingParams(t *testing.T) {
	fx := newFixture()

	if err := fx.svc.HandleWebhook(context.Background(), "", "conv"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing token: kind = %v, want validation", apperr.KindOf(err))
	}
	if err := fx.svc.HandleWebhook(context.Background(), "tok", ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing conversation id: kind = %v, want validation", apperr.KindOf(err))
	}
	if fx.gateway.verifyCalls != 0 {
		t.Fatal("verify must not run without both parameters")
	}
}

func TestWebhookRedeliveryIsNoOp(t *testing.T) {
	fx, res := webhookFixture(t)

	if err := fx.svc.HandleWebhook(context.Background(), "tok-abc", res.SessionID); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := fx.svc.HandleWebhook(context.Background(), "tok-abc", res.SessionID); err != nil {
		t.Fatalf("re-delivery must be acknowledged, got %v", err)
	}

	if len(fx.bus.topics) != 1 {
		t.Fatalf("published %d events, want exactly 1", len(fx.bus.topics))
	}
	if got := fx.payments.paidRefs[res.PaymentID]; got != "tok-abc" {
		t.Fatalf("provider ref = %q, must not change on re-delivery", got)
	}
}

func TestWebhookLockContention(t *testing.T) {
	fx, res := webhookFixture(t)

	_, ok, err := fx.locker.Acquire(context.Background(), lock.WebhookKey(res.SessionID), time.Minute)
	if err != nil || !ok {
		t.Fatalf("pre-acquire failed: ok=%v err=%v", ok, err)
	}

	err = fx.svc.HandleWebhook(context.Background(), "tok-abc", res.SessionID)
	if apperr.KindOf(err) != apperr.KindLockContention {
		t.Fatalf("kind = %v, want lock contention", apperr.KindOf(err))
	}
	if fx.gateway.verifyCalls != 0 {
		t.Fatal("verify must not run while the conversation is locked")
	}
}
