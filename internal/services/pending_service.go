package services

import (
	"errors"

	"gorm.io/gorm"

	"finagent/internal/ai"
	apperrors "finagent/internal/errors"
	"finagent/internal/models"
)

// pendingService tracks expense candidates awaiting an obligation tag. The
// pending row and the conversation entry that offers the three choices are
// two halves of one relation; resolving clears both atomically so rapid
// double-clicks can neither duplicate a commit nor orphan an entry.
type pendingService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewPendingService creates a new PendingServicer.
func NewPendingService(db *gorm.DB, ledger LedgerServicer) PendingServicer {
	return &pendingService{db: db, ledger: ledger}
}

// Begin registers a candidate awaiting its tag. Multiple pending candidates
// may coexist; each resolves independently in any order.
func (s *pendingService) Begin(c ai.ParseCandidate) (*models.PendingCandidate, error) {
	pending := &models.PendingCandidate{
		Date:        c.Date,
		Category:    c.Category,
		Amount:      c.Amount,
		Description: c.Description,
		Confidence:  c.Confidence,
	}
	if err := s.db.Create(pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pending, nil
}

// Resolve materializes a full transaction from the pending candidate and
// hands it to the ledger. A handle that was already resolved or never
// existed fails with UNKNOWN_PENDING and leaves the ledger untouched.
func (s *pendingService) Resolve(id string, obligation models.ObligationType) (*models.Transaction, error) {
	var committed *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pending models.PendingCandidate
		if err := tx.Where("id = ?", id).First(&pending).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUnknownPending
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		obligation := obligation
		t := &models.Transaction{
			Date:        pending.Date,
			Type:        models.TransactionTypeExpense,
			Category:    pending.Category,
			Amount:      pending.Amount,
			Description: pending.Description,
			Obligation:  &obligation,
		}
		if err := s.ledger.AppendTx(tx, t); err != nil {
			return err
		}

		if err := tx.Delete(&pending).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Remove the conversation entry that offered the choices; a new
		// acknowledgment replaces it.
		if err := tx.Where("pending_id = ?", id).Delete(&models.ConversationEntry{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		committed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}
