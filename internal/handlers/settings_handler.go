package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
	"finagent/internal/services"
)

// SettingsHandler handles the onboarding settings record.
type SettingsHandler struct {
	settingsService services.SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// CategoryLimitRequest is one (category, monthly limit) pair.
type CategoryLimitRequest struct {
	Category string          `json:"category" binding:"required"`
	Limit    decimal.Decimal `json:"limit"`
}

// PutSettingsRequest represents the wholesale settings replacement payload
type PutSettingsRequest struct {
	Currency      models.Currency        `json:"currency" binding:"required,currency_unit"`
	MonthlyIncome decimal.Decimal        `json:"monthly_income" binding:"required"`
	Tone          models.Tone            `json:"tone" binding:"required,tone"`
	Limits        []CategoryLimitRequest `json:"limits" binding:"required,min=1,dive"`
}

// GetSettings returns the current settings record.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// PutSettings replaces the settings record wholesale.
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	var req PutSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	limits := make([]models.CategoryLimit, 0, len(req.Limits))
	for _, l := range req.Limits {
		limits = append(limits, models.CategoryLimit{Category: l.Category, Limit: l.Limit})
	}

	settings, err := h.settingsService.Put(&models.UserSettings{
		Currency:      req.Currency,
		MonthlyIncome: req.MonthlyIncome,
		Tone:          req.Tone,
		Limits:        limits,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
