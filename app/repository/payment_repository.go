package repository

import (
	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create appends a ledger entry
func (r *paymentRepository) Create(payment *models.UserPayment) error {
	return r.db.Create(payment).Error
}

// ListByUser retrieves a user's ledger history newest-first, optionally
// filtered by status
func (r *paymentRepository) ListByUser(userID, status string) ([]models.UserPayment, error) {
	q := r.db.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}

	var payments []models.UserPayment
	err := q.Order("created_at DESC").Find(&payments).Error
	return payments, err
}
