package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
)

// Greeting shown when a session log is empty.
const greetingMessage = "Привет! Расскажи, на что сегодня ушли деньги или сколько заработал?"

// conversationService owns the append-only session log. Keeping log
// mutation here leaves the intake orchestrator pure with respect to it.
type conversationService struct {
	db *gorm.DB
}

// NewConversationService creates a new ConversationServicer.
func NewConversationService(db *gorm.DB) ConversationServicer {
	return &conversationService{db: db}
}

// Append adds one entry to the end of the log.
func (s *conversationService) Append(e *models.ConversationEntry) (*models.ConversationEntry, error) {
	if err := s.db.Create(e).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return e, nil
}

// RemoveByID deletes one entry.
func (s *conversationService) RemoveByID(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.ConversationEntry{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrEntryNotFound
	}
	return nil
}

// Replace swaps the content of one entry in place, keeping its position.
func (s *conversationService) Replace(id string, e *models.ConversationEntry) (*models.ConversationEntry, error) {
	var existing models.ConversationEntry
	if err := s.db.Where("id = ?", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing.Role = e.Role
	existing.Content = e.Content
	existing.PendingID = e.PendingID
	existing.IsRedZone = e.IsRedZone

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

// List returns the log in append order, seeding the fixed greeting when the
// session is brand new. Ids are UUIDv7 with a per-process counter, so they
// sort in generation order even within one millisecond.
func (s *conversationService) List() ([]models.ConversationEntry, error) {
	var entries []models.ConversationEntry
	if err := s.db.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(entries) == 0 {
		greeting := &models.ConversationEntry{Role: models.RoleAgent, Content: greetingMessage}
		if _, err := s.Append(greeting); err != nil {
			return nil, err
		}
		entries = append(entries, *greeting)
	}

	return entries, nil
}
