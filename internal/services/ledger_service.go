package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
	"finagent/internal/pagination"
)

// ledgerService owns the transaction collection. Every aggregate is a pure
// function of (rows, reference date) recomputed on demand.
type ledgerService struct {
	db       *gorm.DB
	settings SettingsServicer
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, settings SettingsServicer) LedgerServicer {
	return &ledgerService{db: db, settings: settings}
}

// validate enforces the ledger boundary invariants and normalizes the date
// to its zero-padded form. The settings lookup runs on the caller's handle:
// inside AppendTx that is the open transaction, and the sqlite pool only
// ever has the one connection.
func (s *ledgerService) validate(tx *gorm.DB, t *models.Transaction) error {
	if t.Amount.IsNegative() {
		return apperrors.ErrNegativeAmount
	}

	normalized, err := models.NormalizeDate(t.Date)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidTransactionDay, err)
	}
	t.Date = normalized

	switch t.Type {
	case models.TransactionTypeIncome:
		if t.Obligation != nil {
			return apperrors.ErrUnexpectedObligation
		}
	case models.TransactionTypeExpense:
		if t.Obligation == nil {
			return apperrors.ErrMissingObligation
		}
		settings, err := s.settings.GetTx(tx)
		if err != nil {
			return err
		}
		known := false
		for _, c := range settings.Categories() {
			if c == t.Category {
				known = true
				break
			}
		}
		if !known {
			return apperrors.WithMessage(apperrors.ErrUnknownCategory,
				fmt.Sprintf("Category %q is not part of the configured set", t.Category))
		}
	default:
		return apperrors.WithMessage(apperrors.ErrValidation,
			fmt.Sprintf("Unknown transaction type %q", t.Type))
	}

	return nil
}

// Append adds one finalized transaction.
func (s *ledgerService) Append(t *models.Transaction) (*models.Transaction, error) {
	if err := s.AppendTx(s.db, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AppendTx appends within the caller's database transaction.
func (s *ledgerService) AppendTx(tx *gorm.DB, t *models.Transaction) error {
	if err := s.validate(tx, t); err != nil {
		return err
	}
	if err := tx.Create(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Replace atomically swaps one transaction, keeping its id and ordering key.
func (s *ledgerService) Replace(id string, t *models.Transaction) (*models.Transaction, error) {
	var existing models.Transaction
	if err := s.db.Where("id = ?", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.validate(s.db, t); err != nil {
		return nil, err
	}

	existing.Date = t.Date
	existing.Type = t.Type
	existing.Category = t.Category
	existing.Amount = t.Amount
	existing.Description = t.Description
	existing.Obligation = t.Obligation

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

// Remove deletes one transaction. Callers may treat the NotFound failure as
// idempotent success.
func (s *ledgerService) Remove(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// List returns a paginated slice of the ledger, newest first.
func (s *ledgerService) List(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// expensesInMonth loads the expense rows whose parsed calendar day falls in
// the given month. Membership uses parsed dates, not string prefixes, so
// unpadded legacy dates still land in the right month.
func (s *ledgerService) expensesInMonth(monthKey string) ([]models.Transaction, error) {
	normalized, err := normalizeMonthKey(monthKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	var rows []models.Transaction
	if err := s.db.Where("type = ?", models.TransactionTypeExpense).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	matched := rows[:0]
	for _, r := range rows {
		day, err := models.ParseDate(r.Date)
		if err != nil {
			continue
		}
		if models.MonthKey(day) == normalized {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// MonthlyExpenseTotal sums expense amounts for the given calendar month.
func (s *ledgerService) MonthlyExpenseTotal(monthKey string) (decimal.Decimal, error) {
	rows, err := s.expensesInMonth(monthKey)
	if err != nil {
		return decimal.Zero, err
	}
	return sumAmounts(rows), nil
}

// CategorySpent sums expense amounts for one category within a month.
func (s *ledgerService) CategorySpent(category, monthKey string) (decimal.Decimal, error) {
	rows, err := s.expensesInMonth(monthKey)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		if r.Category == category {
			total = total.Add(r.Amount)
		}
	}
	return total, nil
}

// SpentOn sums expense amounts for a single calendar day.
func (s *ledgerService) SpentOn(date string) (decimal.Decimal, error) {
	normalized, err := models.NormalizeDate(date)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	var rows []models.Transaction
	if err := s.db.Where("type = ? AND date = ?", models.TransactionTypeExpense, normalized).Find(&rows).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sumAmounts(rows), nil
}

// WeeklyTotals sums expenses over the last N 7-day windows ending at
// multiples of 7 days before referenceDate. Boundaries are inclusive and
// computed by calendar-day subtraction.
func (s *ledgerService) WeeklyTotals(weeksBack int, referenceDate string) ([]WeeklyTotal, error) {
	ref, err := models.ParseDate(referenceDate)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	var rows []models.Transaction
	if err := s.db.Where("type = ?", models.TransactionTypeExpense).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make([]WeeklyTotal, 0, weeksBack)
	for i := weeksBack - 1; i >= 0; i-- {
		start := ref.AddDate(0, 0, -(i*7 + 7))
		end := ref.AddDate(0, 0, -(i * 7))

		total := decimal.Zero
		for _, r := range rows {
			day, err := models.ParseDate(r.Date)
			if err != nil {
				continue
			}
			if !day.Before(start) && !day.After(end) {
				total = total.Add(r.Amount)
			}
		}

		totals = append(totals, WeeklyTotal{
			WeeksAgo: i,
			Start:    models.FormatDate(start),
			End:      models.FormatDate(end),
			Total:    total,
		})
	}
	return totals, nil
}

// DiscretionaryShare returns the rounded percentage of the month's expense
// total tagged Optional or Impulse. Zero when the month total is zero.
func (s *ledgerService) DiscretionaryShare(monthKey string) (int, error) {
	rows, err := s.expensesInMonth(monthKey)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	discretionary := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
		if r.IsDiscretionary() {
			discretionary = discretionary.Add(r.Amount)
		}
	}

	if total.IsZero() {
		return 0, nil
	}

	share := discretionary.Div(total).Mul(decimal.NewFromInt(100)).Round(0)
	return int(share.IntPart()), nil
}

func sumAmounts(rows []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}

// normalizeMonthKey re-renders a YYYY-MM key with a zero-padded month.
func normalizeMonthKey(key string) (string, error) {
	var y, m int
	if _, err := fmt.Sscanf(key, "%d-%d", &y, &m); err != nil {
		return "", fmt.Errorf("invalid month key %q", key)
	}
	if m < 1 || m > 12 {
		return "", fmt.Errorf("invalid month key %q", key)
	}
	return fmt.Sprintf("%04d-%02d", y, m), nil
}
