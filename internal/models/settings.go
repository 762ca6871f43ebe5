package models

import (
	"github.com/shopspring/decimal"
)

// Currency is the closed set of supported currency units.
type Currency string

const (
	CurrencyTenge Currency = "₸"
	CurrencyRuble Currency = "₽"
	CurrencyBYN   Currency = "BYN"
)

// Tone is the user's preferred feedback register.
type Tone string

const (
	ToneSoft   Tone = "soft"
	ToneStrict Tone = "strict"
	ToneHard   Tone = "hard"
)

// UserSettings is the singleton settings record produced at onboarding.
// It is replaced wholesale on edits, never partially mutated.
//
// EssentialPayments is retained for forward compatibility but is always
// zero today: FreeBudget equals MonthlyIncome unconditionally.
type UserSettings struct {
	Base
	Currency          Currency        `gorm:"not null" json:"currency"`
	MonthlyIncome     decimal.Decimal `gorm:"type:numeric;not null" json:"monthly_income"`
	EssentialPayments decimal.Decimal `gorm:"type:numeric;not null" json:"essential_payments"`
	FreeBudget        decimal.Decimal `gorm:"type:numeric;not null" json:"free_budget"`
	MonthStart        int             `gorm:"not null;default:1" json:"month_start"`
	MonthEnd          int             `gorm:"not null;default:31" json:"month_end"`
	Tone              Tone            `gorm:"not null" json:"tone"`

	Limits []CategoryLimit `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE" json:"limits"`
}

// CategoryLimit pairs a category with its monthly limit. A limit of zero
// means "unset / not enforced".
type CategoryLimit struct {
	Base
	SettingsID string          `gorm:"type:uuid;not null;index" json:"-"`
	Position   int             `gorm:"not null" json:"-"` // preserves onboarding order
	Category   string          `gorm:"not null" json:"category"`
	Limit      decimal.Decimal `gorm:"type:numeric;not null;column:monthly_limit" json:"limit"`
}

// Categories returns the configured category labels in onboarding order.
func (s *UserSettings) Categories() []string {
	out := make([]string, 0, len(s.Limits))
	for _, l := range s.Limits {
		out = append(out, l.Category)
	}
	return out
}

// LimitFor returns the configured limit for a category, zero when the
// category has no entry or the limit is unset.
func (s *UserSettings) LimitFor(category string) decimal.Decimal {
	for _, l := range s.Limits {
		if l.Category == category {
			return l.Limit
		}
	}
	return decimal.Zero
}

// BaseCategories is the fixed category set offered at onboarding.
var BaseCategories = []string{
	"Продукты",
	"Транспорт",
	"Подарки",
	"Образование",
	"Домашнее хозяйство",
	"Здоровье",
	"Красота и уход за собой",
	"Подписки",
	"Коммуналка",
	"Кредиты/рассрочки",
	"Дети (садик/кружки/школа)",
	"Одежда",
	"Другое",
}

// StrictThresholds maps a currency to the single-transaction amount above
// which feedback switches to a strict register. A zero entry disables the
// amount-based trigger for that currency.
var StrictThresholds = map[Currency]decimal.Decimal{
	CurrencyTenge: decimal.NewFromInt(5000),
	CurrencyRuble: decimal.NewFromInt(1000),
	CurrencyBYN:   decimal.Zero,
}
