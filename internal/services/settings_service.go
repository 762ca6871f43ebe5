package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
)

// settingsService manages the singleton settings record produced at
// onboarding.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// Get returns the settings record, or SETTINGS_NOT_FOUND before onboarding
// has completed.
func (s *settingsService) Get() (*models.UserSettings, error) {
	return s.GetTx(s.db)
}

// GetTx is Get running on a caller-supplied handle, so validation inside a
// transaction reads settings on the transaction's own connection.
func (s *settingsService) GetTx(tx *gorm.DB) (*models.UserSettings, error) {
	var settings models.UserSettings
	if err := tx.Preload("Limits", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSettingsNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// Put replaces the settings record wholesale. Edits must carry one limit per
// configured category; categories can be added over time but never removed.
func (s *settingsService) Put(settings *models.UserSettings) (*models.UserSettings, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	// Free budget currently equals income; the essential-payments field is
	// retained but always zero.
	settings.EssentialPayments = decimal.Zero
	settings.FreeBudget = settings.MonthlyIncome
	if settings.MonthStart == 0 {
		settings.MonthStart = 1
	}
	if settings.MonthEnd == 0 {
		settings.MonthEnd = 31
	}
	for i := range settings.Limits {
		settings.Limits[i].Position = i
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.UserSettings
		err := tx.First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First onboarding.
		case err != nil:
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		default:
			// Removing a category would strand ledger rows filed under it,
			// so edits must retain every configured category. New ones may
			// be appended.
			incoming := make(map[string]bool, len(settings.Limits))
			for _, l := range settings.Limits {
				incoming[l.Category] = true
			}
			var configured []models.CategoryLimit
			if err := tx.Where("settings_id = ?", existing.ID).Find(&configured).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			for _, l := range configured {
				if !incoming[l.Category] {
					return apperrors.WithMessage(apperrors.ErrInvalidInput,
						fmt.Sprintf("Category %q cannot be removed", l.Category))
				}
			}

			if err := tx.Where("settings_id = ?", existing.ID).Delete(&models.CategoryLimit{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Create(settings).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func validateSettings(settings *models.UserSettings) error {
	switch settings.Currency {
	case models.CurrencyTenge, models.CurrencyRuble, models.CurrencyBYN:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("Unsupported currency %q", settings.Currency))
	}

	if !settings.MonthlyIncome.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Monthly income must be positive")
	}

	switch settings.Tone {
	case models.ToneSoft, models.ToneStrict, models.ToneHard:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("Unsupported tone %q", settings.Tone))
	}

	if len(settings.Limits) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Settings must carry one limit per category")
	}
	seen := make(map[string]bool, len(settings.Limits))
	for _, l := range settings.Limits {
		if l.Category == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Category label cannot be empty")
		}
		if seen[l.Category] {
			return apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("Duplicate category %q", l.Category))
		}
		seen[l.Category] = true
		if l.Limit.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("Limit for %q cannot be negative", l.Category))
		}
	}

	return nil
}
