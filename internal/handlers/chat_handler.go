package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
	"finagent/internal/services"
)

// ChatHandler handles the conversation surface: message intake, obligation
// resolution, and log retrieval.
type ChatHandler struct {
	intakeService       services.IntakeServicer
	conversationService services.ConversationServicer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(intakeService services.IntakeServicer, conversationService services.ConversationServicer) *ChatHandler {
	return &ChatHandler{intakeService: intakeService, conversationService: conversationService}
}

// PostMessageRequest represents the request payload for a user message
type PostMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// ResolveObligationRequest represents the obligation choice for a pending expense
type ResolveObligationRequest struct {
	Obligation models.ObligationType `json:"obligation" binding:"required,obligation_type"`
}

// PostMessage runs one user message through the intake pipeline and returns
// the conversation entries appended this turn.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entries, err := h.intakeService.HandleMessage(c.Request.Context(), req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entries": entries})
}

// ResolveObligation finalizes a pending expense with the chosen tag.
func (h *ChatHandler) ResolveObligation(c *gin.Context) {
	pendingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ResolveObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entries, err := h.intakeService.ResolveObligation(c.Request.Context(), pendingID, req.Obligation)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entries": entries})
}

// GetMessages returns the full session log in append order.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	entries, err := h.conversationService.List()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
