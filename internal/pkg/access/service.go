package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/app/repository"
)

// ErrSectionNotFound is returned when a grant or payment references an
// unknown resource id.
var ErrSectionNotFound = errors.New("section not found")

// TxRunner executes a function inside one database transaction, handing
// it repositories bound to that transaction. Tests substitute a fake
// that skips the database.
type TxRunner interface {
	Transaction(fn func(repos *repository.Repositories) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) Transaction(fn func(repos *repository.Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewRepositories(tx))
	})
}

// Service answers "may this user read this resource" and records the
// economic event that grants that right. It holds no mutable state;
// per-pair serialization relies on the database's unique index.
type Service struct {
	repos *repository.Repositories
	tx    TxRunner
}

// NewService creates an access service on top of a GORM DB handle.
func NewService(db *gorm.DB) *Service {
	return NewServiceWithRepos(repository.NewRepositories(db), gormTxRunner{db: db})
}

// NewServiceWithRepos creates an access service on explicit repositories
// and transaction runner.
func NewServiceWithRepos(repos *repository.Repositories, tx TxRunner) *Service {
	return &Service{repos: repos, tx: tx}
}

// HasAccess reports whether an entitlement row exists for the pair.
// Entitlement is binary and sticky; payment status is never interpreted
// here.
func (s *Service) HasAccess(userID, resourceID string) (bool, error) {
	return s.repos.Access.Exists(userID, resourceID)
}

// GrantAccess idempotently inserts the entitlement row, denormalizing
// the owning textbook id. Racing grants for the same pair collapse into
// one row via insert-or-ignore.
func (s *Service) GrantAccess(userID, resourceID string) error {
	section, err := s.repos.Section.GetByResourceID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to look up section %s: %w", resourceID, err)
	}

	return s.repos.Access.CreateIfNotExists(&models.UserAccess{
		UserID:     userID,
		ResourceID: resourceID,
		TextbookID: section.TextbookID,
	})
}

// RecordPayment appends a completed ledger entry and grants access in
// one database transaction, so "paid implies entitled" survives a crash
// between the two writes. Payment input is treated as already verified;
// facilitator verification happens out-of-band before this call.
func (s *Service) RecordPayment(userID, resourceID, currencyCode string, amountMinorUnits int64, facilitatorTxID string) (string, error) {
	section, err := s.repos.Section.GetByResourceID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSectionNotFound
		}
		return "", fmt.Errorf("failed to look up section %s: %w", resourceID, err)
	}

	txID := facilitatorTxID
	if txID == "" {
		txID = NewTransactionID()
	}
	if currencyCode == "" {
		currencyCode = models.DefaultCurrencyCode
	}

	now := time.Now()
	err = s.tx.Transaction(func(repos *repository.Repositories) error {
		if err := repos.Payment.Create(&models.UserPayment{
			UserID:           userID,
			ResourceID:       resourceID,
			CurrencyCode:     currencyCode,
			AmountMinorUnits: amountMinorUnits,
			PaymentStatus:    models.PaymentStatusCompleted,
			FacilitatorTxID:  txID,
			PaidAt:           &now,
		}); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		return repos.Access.CreateIfNotExists(&models.UserAccess{
			UserID:     userID,
			ResourceID: resourceID,
			TextbookID: section.TextbookID,
		})
	})
	if err != nil {
		return "", err
	}

	return txID, nil
}

// UserSections lists the sections a user is entitled to, in section
// order, optionally scoped to one textbook.
func (s *Service) UserSections(userID, textbookSlug string) ([]models.Section, error) {
	return s.repos.Access.ListSectionsForUser(userID, textbookSlug)
}

// UserPayments lists a user's ledger history newest-first, optionally
// filtered by status.
func (s *Service) UserPayments(userID, status string) ([]models.UserPayment, error) {
	return s.repos.Payment.ListByUser(userID, status)
}

// NewTransactionID synthesizes an audit-trail transaction reference for
// payments recorded without a facilitator id.
func NewTransactionID() string {
	return "tx_" + uuid.New().String()
}
