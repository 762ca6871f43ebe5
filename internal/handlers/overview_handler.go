package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finagent/internal/models"
	"finagent/internal/services"
)

// OverviewHandler serves the computed month overview and spending analytics.
// It only renders ledger aggregates; all derivation lives in the services.
type OverviewHandler struct {
	ledgerService   services.LedgerServicer
	settingsService services.SettingsServicer
}

// NewOverviewHandler creates a new OverviewHandler.
func NewOverviewHandler(ledgerService services.LedgerServicer, settingsService services.SettingsServicer) *OverviewHandler {
	return &OverviewHandler{ledgerService: ledgerService, settingsService: settingsService}
}

// CategoryOverview is one category's month-to-date position against its limit.
type CategoryOverview struct {
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Limit    decimal.Decimal `json:"limit"`
	Over     bool            `json:"over"`
}

// GetOverview returns the current month's budget position.
func (h *OverviewHandler) GetOverview(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		respondWithError(c, err)
		return
	}

	today := time.Now()
	monthKey := models.MonthKey(today)

	totalSpent, err := h.ledgerService.MonthlyExpenseTotal(monthKey)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories := make([]CategoryOverview, 0, len(settings.Limits))
	for _, l := range settings.Limits {
		spent, err := h.ledgerService.CategorySpent(l.Category, monthKey)
		if err != nil {
			respondWithError(c, err)
			return
		}
		categories = append(categories, CategoryOverview{
			Category: l.Category,
			Spent:    spent,
			Limit:    l.Limit,
			Over:     l.Limit.IsPositive() && spent.GreaterThan(l.Limit),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        models.FormatDate(today),
		"month":       monthKey,
		"free_budget": settings.FreeBudget,
		"total_spent": totalSpent,
		"remaining":   settings.FreeBudget.Sub(totalSpent),
		"is_red_zone": totalSpent.GreaterThan(settings.FreeBudget),
		"categories":  categories,
	})
}

// GetAnalytics returns the weekly trend and the discretionary share for the
// current month.
func (h *OverviewHandler) GetAnalytics(c *gin.Context) {
	if _, err := h.settingsService.Get(); err != nil {
		respondWithError(c, err)
		return
	}

	today := time.Now()
	monthKey := models.MonthKey(today)

	weekly, err := h.ledgerService.WeeklyTotals(4, models.FormatDate(today))
	if err != nil {
		respondWithError(c, err)
		return
	}

	weeklySum := decimal.Zero
	for _, w := range weekly {
		weeklySum = weeklySum.Add(w.Total)
	}
	avgWeekly := decimal.Zero
	if len(weekly) > 0 {
		avgWeekly = weeklySum.DivRound(decimal.NewFromInt(int64(len(weekly))), 2)
	}

	share, err := h.ledgerService.DiscretionaryShare(monthKey)
	if err != nil {
		respondWithError(c, err)
		return
	}

	monthTotal, err := h.ledgerService.MonthlyExpenseTotal(monthKey)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":               monthKey,
		"weekly":              weekly,
		"average_weekly":      avgWeekly,
		"month_total":         monthTotal,
		"discretionary_share": share,
	})
}
