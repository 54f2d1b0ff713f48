package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusExpired   = "expired"
)

// UserPayment is an append-only ledger entry. A refunded or expired
// entry stays in the ledger with its new status; it does not revoke the
// UserAccess grant.
type UserPayment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           string     `gorm:"type:varchar(191);not null;index" json:"user_id"`
	ResourceID       string     `gorm:"type:varchar(191);not null;index" json:"resource_id"`
	CurrencyCode     string     `gorm:"type:varchar(10);not null;default:'USDC'" json:"currency_code"`
	AmountMinorUnits int64      `gorm:"not null" json:"amount_minor_units"`
	PaymentStatus    string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	FacilitatorTxID  string     `gorm:"type:varchar(191)" json:"facilitator_tx_id"`
	PaidAt           *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// IsValidPaymentStatus reports whether s is a known ledger status.
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusExpired:
		return true
	}
	return false
}
