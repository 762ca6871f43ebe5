package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finagent/internal/ai"
	"finagent/internal/logger"
	"finagent/internal/models"
)

// Fixed fallback sentences so the user always receives a response even when
// the phrasing collaborator is down.
const (
	fallbackFeedbackNormal  = "Данные успешно записаны."
	fallbackFeedbackRedZone = "Операция записана. Следите за лимитами."
)

// feedbackService is the feedback policy: a pure decision over current
// aggregates plus one bounded call to the phrasing collaborator.
type feedbackService struct {
	ledger    LedgerServicer
	phraser   Phraser
	aiTimeout time.Duration
}

// NewFeedbackService creates a new FeedbackServicer.
func NewFeedbackService(ledger LedgerServicer, phraser Phraser, aiTimeout time.Duration) FeedbackServicer {
	return &feedbackService{ledger: ledger, phraser: phraser, aiTimeout: aiTimeout}
}

// Assess derives the budget snapshot and severity for the just-committed
// transaction. Red zone means a category limit or the monthly free budget
// has been exceeded; strict additionally triggers on a single amount above
// the currency's threshold (a zero threshold never triggers).
func (s *feedbackService) Assess(trigger *models.Transaction, settings *models.UserSettings, today string) (*ai.FeedbackStats, error) {
	day, err := models.ParseDate(today)
	if err != nil {
		return nil, err
	}
	monthKey := models.MonthKey(day)

	spentToday, err := s.ledger.SpentOn(today)
	if err != nil {
		return nil, err
	}
	monthTotal, err := s.ledger.MonthlyExpenseTotal(monthKey)
	if err != nil {
		return nil, err
	}
	categorySpent, err := s.ledger.CategorySpent(trigger.Category, monthKey)
	if err != nil {
		return nil, err
	}

	daysLeft := models.DaysRemainingInMonth(day)
	remaining := settings.FreeBudget.Sub(monthTotal)

	// Remaining budget spread over the rest of the month, floored at zero.
	safeDaily := decimal.Zero
	if remaining.IsPositive() {
		safeDaily = remaining.DivRound(decimal.NewFromInt(int64(daysLeft)), 2)
	}

	limit := settings.LimitFor(trigger.Category)
	categoryOverLimit := limit.IsPositive() && categorySpent.GreaterThan(limit)
	isRedZone := categoryOverLimit || monthTotal.GreaterThan(settings.FreeBudget)

	threshold := models.StrictThresholds[settings.Currency]
	isStrict := isRedZone || (threshold.IsPositive() && trigger.Amount.GreaterThan(threshold))

	return &ai.FeedbackStats{
		SpentToday:        spentToday,
		SafeDailyLimit:    safeDaily,
		RemainingBudget:   remaining,
		DaysLeft:          daysLeft,
		CategoryOverLimit: categoryOverLimit,
		IsRedZone:         isRedZone,
		IsStrict:          isStrict,
	}, nil
}

// Deliver requests phrased feedback from the collaborator. Wording is opaque
// text; on failure a canned sentence keeps the conversation usable.
func (s *feedbackService) Deliver(ctx context.Context, stats *ai.FeedbackStats, settings *models.UserSettings) string {
	callCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	text, err := s.phraser.Phrase(callCtx, *stats, settings.Tone, settings.Currency)
	if err != nil {
		logger.Get().Warnw("feedback phrasing failed, using fallback",
			"error", err.Error(),
			"red_zone", stats.IsRedZone,
		)
		if stats.IsRedZone {
			return fallbackFeedbackRedZone
		}
		return fallbackFeedbackNormal
	}
	return text
}
