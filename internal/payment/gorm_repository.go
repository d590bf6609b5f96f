package payment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"gorm.io/gorm"
)

// GormProductRepository adapts the products table for batch resolution.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return products, nil
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return errors.Wrap(err, "insert payment")
	}
	return nil
}

func (r *GormPaymentRepository) SetProviderID(ctx context.Context, id int64, providerID string) error {
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"provider_id": providerID,
			"updated_at":  time.Now(),
		}).Error
	return errors.Wrap(err, "update payment provider id")
}

func (r *GormPaymentRepository) SetStatus(ctx context.Context, id int64, status string) error {
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     time.Now(),
		}).Error
	return errors.Wrap(err, "update payment status")
}

func (r *GormPaymentRepository) MarkPaid(ctx context.Context, id int64, providerRef string) error {
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": domain.PaymentStatusPaid,
			"provider_id":    providerRef,
			"updated_at":     time.Now(),
		}).Error
	return errors.Wrap(err, "mark payment paid")
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, s *domain.PaymentSession) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return errors.Wrap(err, "insert payment session")
	}
	return nil
}

func (r *GormSessionRepository) GetWithPayment(ctx context.Context, id string) (*domain.PaymentSession, *domain.Payment, error) {
	var session domain.PaymentSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, nil, err
	}
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", session.PaymentID).First(&p).Error; err != nil {
		return nil, nil, err
	}
	return &session, &p, nil
}

func (r *GormSessionRepository) UpdateStatus(ctx context.Context, id, status, errorMessage string) error {
	updates := map[string]interface{}{"status": status}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	err := r.db.WithContext(ctx).Model(&domain.PaymentSession{}).Where("id = ?", id).
		Updates(updates).Error
	return errors.Wrap(err, "update session status")
}

func (r *GormSessionRepository) SetProviderID(ctx context.Context, id, providerID string) error {
	err := r.db.WithContext(ctx).Model(&domain.PaymentSession{}).Where("id = ?", id).
		Update("provider_id", providerID).Error
	return errors.Wrap(err, "update session provider id")
}
