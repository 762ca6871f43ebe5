package testutil

import (
	"testing"

	"finagent/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTestSettings creates the singleton settings record with a ₸ 100000
// income and an unset limit for every base category.
func CreateTestSettings(t *testing.T, db *gorm.DB) *models.UserSettings {
	t.Helper()
	return CreateTestSettingsWithLimits(t, db, nil)
}

// CreateTestSettingsWithLimits creates the settings record, applying the
// given per-category limits on top of the base set (zero = unenforced).
func CreateTestSettingsWithLimits(t *testing.T, db *gorm.DB, limits map[string]decimal.Decimal) *models.UserSettings {
	t.Helper()

	categoryLimits := make([]models.CategoryLimit, 0, len(models.BaseCategories))
	for i, cat := range models.BaseCategories {
		limit := decimal.Zero
		if l, ok := limits[cat]; ok {
			limit = l
		}
		categoryLimits = append(categoryLimits, models.CategoryLimit{
			Position: i,
			Category: cat,
			Limit:    limit,
		})
	}

	income := decimal.NewFromInt(100000)
	settings := &models.UserSettings{
		Currency:          models.CurrencyTenge,
		MonthlyIncome:     income,
		EssentialPayments: decimal.Zero,
		FreeBudget:        income,
		MonthStart:        1,
		MonthEnd:          31,
		Tone:              models.ToneSoft,
		Limits:            categoryLimits,
	}
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("failed to create test settings: %v", err)
	}
	return settings
}

// CreateTestExpense creates a finalized expense on the given day.
func CreateTestExpense(t *testing.T, db *gorm.DB, date, category string, amount int64, obligation models.ObligationType) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Date:        date,
		Type:        models.TransactionTypeExpense,
		Category:    category,
		Amount:      decimal.NewFromInt(amount),
		Description: category,
		Obligation:  &obligation,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return tx
}

// CreateTestIncome creates a finalized income transaction on the given day.
func CreateTestIncome(t *testing.T, db *gorm.DB, date string, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Date:        date,
		Type:        models.TransactionTypeIncome,
		Category:    "Другое",
		Amount:      decimal.NewFromInt(amount),
		Description: "доход",
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return tx
}

// CreateTestPending creates a pending expense candidate.
func CreateTestPending(t *testing.T, db *gorm.DB, date, category string, amount int64) *models.PendingCandidate {
	t.Helper()

	pending := &models.PendingCandidate{
		Date:        date,
		Category:    category,
		Amount:      decimal.NewFromInt(amount),
		Description: category,
		Confidence:  0.9,
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("failed to create test pending candidate: %v", err)
	}
	return pending
}
