package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finagent/internal/ai"
	"finagent/internal/models"
	"finagent/internal/pagination"
)

// Extractor is the capability interface for the extraction collaborator:
// free text in, structured transaction candidates out. Implementations must
// not block past the caller's context deadline.
type Extractor interface {
	Extract(ctx context.Context, text string, categories []string, today string) ([]ai.ParseCandidate, error)
}

// Phraser is the capability interface for the feedback-phrasing
// collaborator. It returns a non-empty string or an error; the feedback
// policy applies its canned fallback on failure.
type Phraser interface {
	Phrase(ctx context.Context, stats ai.FeedbackStats, tone models.Tone, currency models.Currency) (string, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *string
	ToDate   *string
	Type     *models.TransactionType
	Category *string
}

// WeeklyTotal is the expense sum for one 7-day window.
type WeeklyTotal struct {
	WeeksAgo int             `json:"weeks_ago"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Total    decimal.Decimal `json:"total"`
}

// LedgerServicer defines the contract for the budget ledger: the sole owner
// and writer of the transaction collection. Aggregates are always recomputed
// from rows, never cached.
type LedgerServicer interface {
	Append(t *models.Transaction) (*models.Transaction, error)
	// AppendTx appends within an existing database transaction so callers
	// can make the commit atomic with their own writes.
	AppendTx(tx *gorm.DB, t *models.Transaction) error
	Replace(id string, t *models.Transaction) (*models.Transaction, error)
	Remove(id string) error
	List(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)

	MonthlyExpenseTotal(monthKey string) (decimal.Decimal, error)
	CategorySpent(category, monthKey string) (decimal.Decimal, error)
	SpentOn(date string) (decimal.Decimal, error)
	WeeklyTotals(weeksBack int, referenceDate string) ([]WeeklyTotal, error)
	DiscretionaryShare(monthKey string) (int, error)
}

// SettingsServicer defines the contract for the singleton settings record.
type SettingsServicer interface {
	Get() (*models.UserSettings, error)
	// GetTx reads the record through an existing database transaction.
	// Validation that runs inside a transaction must use this: the
	// sqlite pool holds a single connection, so a read on a second
	// connection would wait on the transaction that needs it.
	GetTx(tx *gorm.DB) (*models.UserSettings, error)
	Put(s *models.UserSettings) (*models.UserSettings, error)
}

// PendingServicer models the two-step commit for expenses: a candidate is
// not written to the ledger until an obligation tag is chosen.
type PendingServicer interface {
	Begin(c ai.ParseCandidate) (*models.PendingCandidate, error)
	// Resolve materializes the transaction, commits it to the ledger,
	// clears the pending entry, and removes the conversation entry that
	// offered the choices, all in one atomic step.
	Resolve(id string, obligation models.ObligationType) (*models.Transaction, error)
}

// FeedbackServicer decides the severity of spend feedback and requests its
// wording from the phrasing collaborator.
type FeedbackServicer interface {
	Assess(trigger *models.Transaction, settings *models.UserSettings, today string) (*ai.FeedbackStats, error)
	// Deliver returns the phrased feedback, falling back to a fixed
	// sentence when the collaborator fails. It never returns an error.
	Deliver(ctx context.Context, stats *ai.FeedbackStats, settings *models.UserSettings) string
}

// ConversationServicer owns the append-only session log.
type ConversationServicer interface {
	Append(e *models.ConversationEntry) (*models.ConversationEntry, error)
	RemoveByID(id string) error
	Replace(id string, e *models.ConversationEntry) (*models.ConversationEntry, error)
	List() ([]models.ConversationEntry, error)
}

// IntakeServicer drives one user action through the full pipeline:
// extraction, per-candidate branching, ledger commit, feedback.
type IntakeServicer interface {
	HandleMessage(ctx context.Context, text string) ([]models.ConversationEntry, error)
	ResolveObligation(ctx context.Context, pendingID string, obligation models.ObligationType) ([]models.ConversationEntry, error)
}
