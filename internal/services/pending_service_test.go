package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"finagent/internal/ai"
	"finagent/internal/models"
	"finagent/internal/testutil"
)

func TestPendingBegin(t *testing.T) {
	t.Run("parks_a_candidate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewPendingService(db, NewLedgerService(db, NewSettingsService(db)))

		pending, err := svc.Begin(ai.ParseCandidate{
			Date:        "2025-03-15",
			Type:        models.TransactionTypeExpense,
			Amount:      decimal.NewFromInt(1500),
			Category:    "Продукты",
			Description: "продукты",
			Confidence:  0.95,
		})
		testutil.AssertNoError(t, err)

		if pending.ID == "" {
			t.Fatal("expected non-empty pending ID")
		}

		// Nothing is committed to the ledger until the tag arrives.
		var count int64
		if err := db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
			t.Fatalf("count transactions: %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty ledger, got %d rows", count)
		}
	})
}

func TestPendingResolve(t *testing.T) {
	t.Run("commits_exactly_one_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		ledger := NewLedgerService(db, NewSettingsService(db))
		svc := NewPendingService(db, ledger)

		pending := testutil.CreateTestPending(t, db, "2025-03-15", "Продукты", 1500)

		tx, err := svc.Resolve(pending.ID, models.ObligationEssential)
		testutil.AssertNoError(t, err)

		if tx.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense, got %s", tx.Type)
		}
		if tx.Obligation == nil || *tx.Obligation != models.ObligationEssential {
			t.Errorf("expected Essential obligation, got %v", tx.Obligation)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1500), tx.Amount)

		total, err := ledger.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1500), total)
	})

	t.Run("double_resolve_cannot_duplicate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		ledger := NewLedgerService(db, NewSettingsService(db))
		svc := NewPendingService(db, ledger)

		pending := testutil.CreateTestPending(t, db, "2025-03-15", "Продукты", 1500)

		_, err := svc.Resolve(pending.ID, models.ObligationEssential)
		testutil.AssertNoError(t, err)

		_, err = svc.Resolve(pending.ID, models.ObligationImpulse)
		testutil.AssertAppError(t, err, "UNKNOWN_PENDING")

		var count int64
		if err := db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
			t.Fatalf("count transactions: %v", err)
		}
		if count != 1 {
			t.Errorf("expected exactly one committed transaction, got %d", count)
		}
	})

	t.Run("commits_on_a_single_connection_pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		// The sqlite pool runs with one connection, so every read inside
		// the commit transaction must go through the transaction handle.
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("get sql.DB: %v", err)
		}
		sqlDB.SetMaxOpenConns(1)

		testutil.CreateTestSettings(t, db)
		ledger := NewLedgerService(db, NewSettingsService(db))
		svc := NewPendingService(db, ledger)

		pending := testutil.CreateTestPending(t, db, "2025-03-15", "Продукты", 1500)

		tx, err := svc.Resolve(pending.ID, models.ObligationEssential)
		testutil.AssertNoError(t, err)
		if tx.Category != "Продукты" {
			t.Errorf("expected Продукты, got %s", tx.Category)
		}

		total, err := ledger.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1500), total)
	})

	t.Run("removes_the_choice_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewPendingService(db, NewLedgerService(db, NewSettingsService(db)))

		pending := testutil.CreateTestPending(t, db, "2025-03-15", "Продукты", 1500)
		entry := &models.ConversationEntry{
			Role:      models.RoleAgent,
			Content:   "К какому типу её отнесем?",
			PendingID: &pending.ID,
		}
		if err := db.Create(entry).Error; err != nil {
			t.Fatalf("create choice entry: %v", err)
		}

		_, err := svc.Resolve(pending.ID, models.ObligationOptional)
		testutil.AssertNoError(t, err)

		var count int64
		if err := db.Model(&models.ConversationEntry{}).Where("pending_id = ?", pending.ID).Count(&count).Error; err != nil {
			t.Fatalf("count entries: %v", err)
		}
		if count != 0 {
			t.Errorf("expected choice entry to be removed, %d left", count)
		}
	})

	t.Run("unknown_handle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewPendingService(db, NewLedgerService(db, NewSettingsService(db)))

		_, err := svc.Resolve("0195e6f2-0000-7000-8000-000000000000", models.ObligationEssential)
		testutil.AssertAppError(t, err, "UNKNOWN_PENDING")
	})

	t.Run("two_pending_resolve_independently", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		ledger := NewLedgerService(db, NewSettingsService(db))
		svc := NewPendingService(db, ledger)

		first := testutil.CreateTestPending(t, db, "2025-03-15", "Продукты", 1500)
		second := testutil.CreateTestPending(t, db, "2025-03-15", "Транспорт", 800)

		// Resolving in reverse order must not disturb the other candidate.
		taxi, err := svc.Resolve(second.ID, models.ObligationOptional)
		testutil.AssertNoError(t, err)
		if taxi.Category != "Транспорт" {
			t.Errorf("expected Транспорт, got %s", taxi.Category)
		}

		groceries, err := svc.Resolve(first.ID, models.ObligationEssential)
		testutil.AssertNoError(t, err)
		if groceries.Category != "Продукты" {
			t.Errorf("expected Продукты, got %s", groceries.Category)
		}

		total, err := ledger.MonthlyExpenseTotal("2025-03")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(2300), total)
	})

	t.Run("ledger_rejection_keeps_the_candidate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		svc := NewPendingService(db, NewLedgerService(db, NewSettingsService(db)))

		// A candidate parked before its category was removed from settings.
		pending := testutil.CreateTestPending(t, db, "2025-03-15", "Казино", 1500)

		_, err := svc.Resolve(pending.ID, models.ObligationImpulse)
		testutil.AssertAppError(t, err, "UNKNOWN_CATEGORY")

		// The rollback leaves the candidate in place for a later retry.
		var count int64
		if err := db.Model(&models.PendingCandidate{}).Where("id = ?", pending.ID).Count(&count).Error; err != nil {
			t.Fatalf("count pending: %v", err)
		}
		if count != 1 {
			t.Errorf("expected pending candidate to survive the rollback, got %d", count)
		}
	})
}
