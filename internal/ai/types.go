// Package ai implements the two external language-service capabilities the
// intake pipeline depends on: extracting transaction candidates from free
// text and phrasing budget feedback. Both are backed by Gemini.
package ai

import (
	"github.com/shopspring/decimal"

	"finagent/internal/models"
)

// Clarification reasons a candidate may carry.
const (
	ReasonDate     = "date"
	ReasonCategory = "category"
	ReasonType     = "type"
	ReasonAmount   = "amount"
)

// ParseCandidate is one structured transaction candidate extracted from a
// user message. Ephemeral: it is either finalized, parked as a pending
// expense, or discarded with a clarification question.
type ParseCandidate struct {
	Date                string                 `json:"date"`
	Type                models.TransactionType `json:"type"`
	Amount              decimal.Decimal        `json:"amount"`
	Category            string                 `json:"category"`
	Description         string                 `json:"description"`
	Confidence          float64                `json:"confidence"`
	NeedsClarification  bool                   `json:"needs_clarification"`
	ClarificationReason string                 `json:"clarification_reason,omitempty"`
}

// FeedbackStats is the snapshot of budget state handed to the phrasing
// collaborator. All derivation happens in the feedback policy; the
// collaborator only words it.
type FeedbackStats struct {
	SpentToday        decimal.Decimal `json:"spent_today"`
	SafeDailyLimit    decimal.Decimal `json:"safe_daily_limit"`
	RemainingBudget   decimal.Decimal `json:"remaining_budget"`
	DaysLeft          int             `json:"days_left"`
	CategoryOverLimit bool            `json:"category_over_limit"`
	IsRedZone         bool            `json:"is_red_zone"`
	IsStrict          bool            `json:"is_strict"`
}
