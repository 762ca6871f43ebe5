package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finagent/internal/ai"
	apperrors "finagent/internal/errors"
	"finagent/internal/logger"
	"finagent/internal/models"
)

// Fixed agent phrases. Phrased feedback comes from the collaborator; these
// cover every branch that must answer without it.
const (
	msgCouldNotUnderstand = `Хм, я не совсем понял. Можешь перефразировать? Например: "продукты 1500" или "такси 800 вчера".`
	msgClarifyCategory    = "Мне нужно уточнить детали: к какой категории это отнесем?"
	msgClarifyAmount      = "Мне нужно уточнить детали: какая была сумма?"
	msgClarifyDate        = "Мне нужно уточнить детали: какая это была дата?"
)

// intakeService drives one user action to completion: extraction,
// per-candidate branching, ledger commit, feedback. Terminal per message;
// clarifications expect a fresh message rather than a retry loop.
type intakeService struct {
	extractor    Extractor
	ledger       LedgerServicer
	pending      PendingServicer
	feedback     FeedbackServicer
	conversation ConversationServicer
	settings     SettingsServicer
	aiTimeout    time.Duration
	now          func() time.Time
}

// NewIntakeService creates a new IntakeServicer.
func NewIntakeService(
	extractor Extractor,
	ledger LedgerServicer,
	pending PendingServicer,
	feedback FeedbackServicer,
	conversation ConversationServicer,
	settings SettingsServicer,
	aiTimeout time.Duration,
) IntakeServicer {
	return &intakeService{
		extractor:    extractor,
		ledger:       ledger,
		pending:      pending,
		feedback:     feedback,
		conversation: conversation,
		settings:     settings,
		aiTimeout:    aiTimeout,
		now:          time.Now,
	}
}

// HandleMessage runs one raw user message through the pipeline and returns
// the entries appended to the conversation log this turn.
func (s *intakeService) HandleMessage(ctx context.Context, text string) ([]models.ConversationEntry, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Message cannot be empty")
	}

	var appended []models.ConversationEntry
	appendEntry := func(e *models.ConversationEntry) error {
		if _, err := s.conversation.Append(e); err != nil {
			return err
		}
		appended = append(appended, *e)
		return nil
	}

	if err := appendEntry(&models.ConversationEntry{Role: models.RoleUser, Content: text}); err != nil {
		return nil, err
	}

	today := models.FormatDate(s.now())

	callCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	candidates, err := s.extractor.Extract(callCtx, text, settings.Categories(), today)
	cancel()
	if err != nil {
		// Collaborator failure degrades to an empty result; the loop
		// stays available.
		logger.Get().Warnw("extraction failed", "error", err.Error())
		candidates = nil
	}

	if len(candidates) == 0 {
		if err := appendEntry(&models.ConversationEntry{Role: models.RoleAgent, Content: msgCouldNotUnderstand}); err != nil {
			return nil, err
		}
		return appended, nil
	}

	for _, c := range candidates {
		entries, err := s.handleCandidate(ctx, c, settings, today)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if err := appendEntry(&entries[i]); err != nil {
				return nil, err
			}
		}
	}

	return appended, nil
}

// handleCandidate branches one candidate: clarify, finalize income, or park
// the expense until an obligation tag arrives. Each candidate is handled
// independently of its siblings.
func (s *intakeService) handleCandidate(ctx context.Context, c ai.ParseCandidate, settings *models.UserSettings, today string) ([]models.ConversationEntry, error) {
	if c.NeedsClarification {
		return []models.ConversationEntry{
			{Role: models.RoleAgent, Content: clarificationQuestion(c.ClarificationReason)},
		}, nil
	}

	// Malformed candidates become a clarification request, never a silent
	// drop.
	if !c.Amount.IsPositive() {
		return []models.ConversationEntry{
			{Role: models.RoleAgent, Content: msgClarifyAmount},
		}, nil
	}
	if _, err := models.NormalizeDate(c.Date); err != nil {
		return []models.ConversationEntry{
			{Role: models.RoleAgent, Content: msgClarifyDate},
		}, nil
	}

	switch c.Type {
	case models.TransactionTypeIncome:
		return s.finalizeIncome(ctx, c, settings, today)

	case models.TransactionTypeExpense:
		if !categoryKnown(settings, c.Category) {
			return []models.ConversationEntry{
				{Role: models.RoleAgent, Content: msgClarifyCategory},
			}, nil
		}
		pending, err := s.pending.Begin(c)
		if err != nil {
			return nil, err
		}
		return []models.ConversationEntry{{
			Role:      models.RoleAgent,
			Content:   fmt.Sprintf("Записываю трату: %s на сумму %s %s. К какому типу её отнесем?", c.Description, c.Amount, settings.Currency),
			PendingID: &pending.ID,
		}}, nil

	default:
		return []models.ConversationEntry{
			{Role: models.RoleAgent, Content: clarificationQuestion(ai.ReasonType)},
		}, nil
	}
}

// finalizeIncome commits an income candidate immediately; no obligation tag
// is needed.
func (s *intakeService) finalizeIncome(ctx context.Context, c ai.ParseCandidate, settings *models.UserSettings, today string) ([]models.ConversationEntry, error) {
	t := &models.Transaction{
		Date:        c.Date,
		Type:        models.TransactionTypeIncome,
		Category:    c.Category,
		Amount:      c.Amount,
		Description: c.Description,
	}
	if _, err := s.ledger.Append(t); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.StatusCode < 500 {
			// Ledger rejected the candidate; surface it as a
			// clarification request instead of crashing the turn.
			return []models.ConversationEntry{
				{Role: models.RoleAgent, Content: clarificationForLedger(err)},
			}, nil
		}
		return nil, err
	}

	ack := models.ConversationEntry{
		Role:    models.RoleAgent,
		Content: fmt.Sprintf("Записал доход: %s %s (%s). Отлично!", c.Amount, settings.Currency, c.Description),
	}
	feedback, err := s.feedbackEntry(ctx, t, settings, today)
	if err != nil {
		return nil, err
	}
	return []models.ConversationEntry{ack, *feedback}, nil
}

// ResolveObligation completes the two-step expense commit once the user
// picks a tag for a pending candidate.
func (s *intakeService) ResolveObligation(ctx context.Context, pendingID string, obligation models.ObligationType) ([]models.ConversationEntry, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	t, err := s.pending.Resolve(pendingID, obligation)
	if err != nil {
		return nil, err
	}

	today := models.FormatDate(s.now())

	ack := &models.ConversationEntry{
		Role:    models.RoleAgent,
		Content: fmt.Sprintf("Записал трату: %s на сумму %s %s.", t.Description, t.Amount, settings.Currency),
	}
	if _, err := s.conversation.Append(ack); err != nil {
		return nil, err
	}

	feedback, err := s.feedbackEntry(ctx, t, settings, today)
	if err != nil {
		return nil, err
	}
	if _, err := s.conversation.Append(feedback); err != nil {
		return nil, err
	}

	return []models.ConversationEntry{*ack, *feedback}, nil
}

// feedbackEntry runs the feedback policy for a committed transaction and
// wraps the phrased result as an agent entry carrying the red-zone flag.
func (s *intakeService) feedbackEntry(ctx context.Context, t *models.Transaction, settings *models.UserSettings, today string) (*models.ConversationEntry, error) {
	stats, err := s.feedback.Assess(t, settings, today)
	if err != nil {
		return nil, err
	}
	content := s.feedback.Deliver(ctx, stats, settings)
	return &models.ConversationEntry{
		Role:      models.RoleAgent,
		Content:   content,
		IsRedZone: stats.IsRedZone,
	}, nil
}

// clarificationQuestion maps a stated reason to a question. Category gets
// its own phrasing; everything else defaults to the date question.
func clarificationQuestion(reason string) string {
	if reason == ai.ReasonCategory {
		return msgClarifyCategory
	}
	return msgClarifyDate
}

// clarificationForLedger turns a ledger validation failure into the closest
// clarification question.
func clarificationForLedger(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrUnknownCategory.Code:
			return msgClarifyCategory
		case apperrors.ErrNegativeAmount.Code:
			return msgClarifyAmount
		}
	}
	return msgClarifyDate
}

func categoryKnown(settings *models.UserSettings, category string) bool {
	for _, c := range settings.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
