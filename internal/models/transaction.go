package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ObligationType is the post-hoc classification of an expense. It feeds the
// discretionary-share analytics and nothing else.
type ObligationType string

const (
	ObligationEssential ObligationType = "Essential"
	ObligationOptional  ObligationType = "Optional"
	ObligationImpulse   ObligationType = "Impulse"
)

// Obligations lists the three choices offered when an expense awaits its tag.
var Obligations = []ObligationType{ObligationEssential, ObligationOptional, ObligationImpulse}

// Transaction represents a finalized financial event. Once written to the
// ledger it is immutable; edits go through a wholesale Replace.
//
// Income transactions never carry an obligation tag; an expense is only
// complete once one is attached.
type Transaction struct {
	Base
	Date        string          `gorm:"not null;index" json:"date"` // YYYY-MM-DD, zero-padded
	Type        TransactionType `gorm:"not null" json:"type"`
	Category    string          `gorm:"not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Description string          `json:"description"`
	Obligation  *ObligationType `json:"obligation,omitempty"`
}

// IsDiscretionary reports whether the transaction counts toward the
// discretionary share of the month.
func (t *Transaction) IsDiscretionary() bool {
	if t.Obligation == nil {
		return false
	}
	return *t.Obligation == ObligationOptional || *t.Obligation == ObligationImpulse
}
