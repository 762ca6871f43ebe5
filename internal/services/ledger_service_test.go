package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"finagent/internal/models"
	"finagent/internal/pagination"
	"finagent/internal/testutil"
)

func expense(date, category string, amount int64, obligation models.ObligationType) *models.Transaction {
	return &models.Transaction{
		Date:        date,
		Type:        models.TransactionTypeExpense,
		Category:    category,
		Amount:      decimal.NewFromInt(amount),
		Description: category,
		Obligation:  &obligation,
	}
}

func income(date string, amount int64) *models.Transaction {
	return &models.Transaction{
		Date:        date,
		Type:        models.TransactionTypeIncome,
		Category:    "Другое",
		Amount:      decimal.NewFromInt(amount),
		Description: "доход",
	}
}

func TestLedgerAppend(t *testing.T) {
	t.Run("valid_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		tx, err := svc.Append(expense("2025-03-10", "Продукты", 1500, models.ObligationEssential))
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if tx.Obligation == nil || *tx.Obligation != models.ObligationEssential {
			t.Errorf("expected Essential obligation, got %v", tx.Obligation)
		}
	})

	t.Run("valid_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		tx, err := svc.Append(income("2025-03-01", 100000))
		testutil.AssertNoError(t, err)

		if tx.Obligation != nil {
			t.Errorf("expected income without obligation, got %v", *tx.Obligation)
		}
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		bad := expense("2025-03-10", "Продукты", 0, models.ObligationEssential)
		bad.Amount = decimal.NewFromInt(-100)
		_, err := svc.Append(bad)
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})

	t.Run("income_with_obligation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		obligation := models.ObligationOptional
		bad := income("2025-03-01", 1000)
		bad.Obligation = &obligation
		_, err := svc.Append(bad)
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})

	t.Run("expense_without_obligation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		bad := expense("2025-03-10", "Продукты", 500, models.ObligationEssential)
		bad.Obligation = nil
		_, err := svc.Append(bad)
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		_, err := svc.Append(expense("2025-03-10", "Казино", 500, models.ObligationImpulse))
		testutil.AssertAppError(t, err, "UNKNOWN_CATEGORY")
	})

	t.Run("normalizes_unpadded_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		tx, err := svc.Append(expense("2025-3-5", "Продукты", 500, models.ObligationEssential))
		testutil.AssertNoError(t, err)

		if tx.Date != "2025-03-05" {
			t.Errorf("expected date 2025-03-05, got %s", tx.Date)
		}
	})

	t.Run("invalid_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		_, err := svc.Append(expense("вчера", "Продукты", 500, models.ObligationEssential))
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestLedgerMonthlyExpenseTotal(t *testing.T) {
	t.Run("equals_sum_of_appends", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		amounts := []int64{1500, 800, 2500}
		for _, a := range amounts {
			_, err := svc.Append(expense("2025-03-10", "Продукты", a, models.ObligationEssential))
			testutil.AssertNoError(t, err)
		}

		total, err := svc.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(4800), total)
	})

	t.Run("ignores_income_and_other_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-10", "Продукты", 1500, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-02-28", "Продукты", 999, models.ObligationEssential)
		testutil.CreateTestIncome(t, db, "2025-03-01", 100000)

		total, err := svc.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1500), total)
	})

	t.Run("counts_unpadded_legacy_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		// Rows written before date normalization may carry unpadded days.
		testutil.CreateTestExpense(t, db, "2025-3-5", "Продукты", 700, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-20", "Продукты", 300, models.ObligationEssential)

		total, err := svc.MonthlyExpenseTotal("2025-3")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1000), total)
	})

	t.Run("invalid_month_key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		_, err := svc.MonthlyExpenseTotal("march")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestLedgerCategorySpent(t *testing.T) {
	t.Run("sums_only_the_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-01", "Одежда", 3000, models.ObligationImpulse)
		testutil.CreateTestExpense(t, db, "2025-03-12", "Одежда", 3000, models.ObligationImpulse)
		testutil.CreateTestExpense(t, db, "2025-03-12", "Продукты", 1500, models.ObligationEssential)

		spent, err := svc.CategorySpent("Одежда", "2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(6000), spent)
	})

	t.Run("zero_when_nothing_spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		spent, err := svc.CategorySpent("Одежда", "2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.Zero, spent)
	})
}

func TestLedgerSpentOn(t *testing.T) {
	t.Run("sums_one_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-15", "Продукты", 1500, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-15", "Транспорт", 800, models.ObligationOptional)
		testutil.CreateTestExpense(t, db, "2025-03-14", "Продукты", 999, models.ObligationEssential)

		spent, err := svc.SpentOn("2025-03-15")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(2300), spent)
	})
}

func TestLedgerRemove(t *testing.T) {
	t.Run("round_trip_restores_total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-10", "Продукты", 1500, models.ObligationEssential)
		before, err := svc.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)

		tx, err := svc.Append(expense("2025-03-11", "Транспорт", 800, models.ObligationOptional))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.Remove(tx.ID))

		after, err := svc.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, before, after)
	})

	t.Run("missing_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		err := svc.Remove("0195e6f2-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestLedgerReplace(t *testing.T) {
	t.Run("swaps_in_place", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		original := testutil.CreateTestExpense(t, db, "2025-03-10", "Продукты", 1500, models.ObligationEssential)

		replaced, err := svc.Replace(original.ID, expense("2025-03-11", "Транспорт", 800, models.ObligationOptional))
		testutil.AssertNoError(t, err)

		if replaced.ID != original.ID {
			t.Errorf("expected id %s to survive the replace, got %s", original.ID, replaced.ID)
		}
		if replaced.Category != "Транспорт" {
			t.Errorf("expected category Транспорт, got %s", replaced.Category)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(800), replaced.Amount)
	})

	t.Run("missing_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		_, err := svc.Replace("0195e6f2-0000-7000-8000-000000000000", expense("2025-03-11", "Продукты", 800, models.ObligationEssential))
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("rejects_invalid_replacement", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		original := testutil.CreateTestExpense(t, db, "2025-03-10", "Продукты", 1500, models.ObligationEssential)

		_, err := svc.Replace(original.ID, expense("2025-03-11", "Казино", 800, models.ObligationImpulse))
		testutil.AssertAppError(t, err, "UNKNOWN_CATEGORY")
	})
}

func TestLedgerList(t *testing.T) {
	t.Run("newest_first_with_pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-01", "Продукты", 100, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-15", "Продукты", 200, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-08", "Продукты", 300, models.ObligationEssential)

		page := pagination.PageRequest{Page: 1, PageSize: 2}
		result, err := svc.List(page, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Errorf("expected 3 total items, got %d", result.TotalItems)
		}
		if len(result.Data) != 2 {
			t.Fatalf("expected 2 items on page, got %d", len(result.Data))
		}
		if result.Data[0].Date != "2025-03-15" {
			t.Errorf("expected newest first, got %s", result.Data[0].Date)
		}
	})

	t.Run("filters_by_type_and_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-01", "Продукты", 100, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-02", "Транспорт", 200, models.ObligationOptional)
		testutil.CreateTestIncome(t, db, "2025-03-03", 100000)

		expenseType := models.TransactionTypeExpense
		category := "Транспорт"
		result, err := svc.List(pagination.PageRequest{}, TransactionFilter{Type: &expenseType, Category: &category})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 item, got %d", result.TotalItems)
		}
		if result.Data[0].Category != "Транспорт" {
			t.Errorf("expected Транспорт, got %s", result.Data[0].Category)
		}
	})

	t.Run("filters_by_date_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-01", "Продукты", 100, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-10", "Продукты", 200, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-20", "Продукты", 300, models.ObligationEssential)

		from := "2025-03-05"
		to := "2025-03-15"
		result, err := svc.List(pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 item in range, got %d", result.TotalItems)
		}
		if result.Data[0].Date != "2025-03-10" {
			t.Errorf("expected 2025-03-10, got %s", result.Data[0].Date)
		}
	})
}

func TestLedgerWeeklyTotals(t *testing.T) {
	t.Run("windows_cover_the_last_weeks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		// Reference day 2025-03-28: current window is 03-21..03-28,
		// the one before 03-14..03-21.
		testutil.CreateTestExpense(t, db, "2025-03-27", "Продукты", 1000, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-16", "Продукты", 500, models.ObligationEssential)

		totals, err := svc.WeeklyTotals(4, "2025-03-28")
		testutil.AssertNoError(t, err)

		if len(totals) != 4 {
			t.Fatalf("expected 4 windows, got %d", len(totals))
		}
		if totals[0].WeeksAgo != 3 || totals[3].WeeksAgo != 0 {
			t.Errorf("expected oldest window first, got %d..%d", totals[0].WeeksAgo, totals[3].WeeksAgo)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1000), totals[3].Total)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(500), totals[2].Total)
		testutil.AssertDecimalEqual(t, decimal.Zero, totals[0].Total)
	})

	t.Run("invalid_reference_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		_, err := svc.WeeklyTotals(4, "not-a-date")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestLedgerDiscretionaryShare(t *testing.T) {
	t.Run("zero_for_empty_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		share, err := svc.DiscretionaryShare("2025-03")
		testutil.AssertNoError(t, err)
		if share != 0 {
			t.Errorf("expected 0, got %d", share)
		}
	})

	t.Run("hundred_when_all_discretionary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		testutil.CreateTestExpense(t, db, "2025-03-10", "Одежда", 3000, models.ObligationImpulse)
		testutil.CreateTestExpense(t, db, "2025-03-11", "Подарки", 2000, models.ObligationOptional)

		share, err := svc.DiscretionaryShare("2025-03")
		testutil.AssertNoError(t, err)
		if share != 100 {
			t.Errorf("expected 100, got %d", share)
		}
	})

	t.Run("rounded_mixed_share", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewLedgerService(db, NewSettingsService(db))

		// 1000 of 3000 discretionary: 33.33 rounds to 33.
		testutil.CreateTestExpense(t, db, "2025-03-10", "Продукты", 2000, models.ObligationEssential)
		testutil.CreateTestExpense(t, db, "2025-03-11", "Одежда", 1000, models.ObligationImpulse)

		share, err := svc.DiscretionaryShare("2025-03")
		testutil.AssertNoError(t, err)
		if share != 33 {
			t.Errorf("expected 33, got %d", share)
		}
	})
}
