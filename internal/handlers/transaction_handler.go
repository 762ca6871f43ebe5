package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finagent/internal/errors"
	"finagent/internal/models"
	"finagent/internal/pagination"
	"finagent/internal/services"
)

// TransactionHandler serves the history surface: listing, edits, deletes.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerService services.LedgerServicer) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// ListTransactionsRequest holds the query parameters for listing transactions
type ListTransactionsRequest struct {
	pagination.PageRequest
	FromDate *string `form:"from_date"`
	ToDate   *string `form:"to_date"`
	Type     *string `form:"type" binding:"omitempty,transaction_type"`
	Category *string `form:"category"`
}

// ReplaceTransactionRequest represents the wholesale replacement of one transaction
type ReplaceTransactionRequest struct {
	Date        string                 `json:"date" binding:"required"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category    string                 `json:"category" binding:"required"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Description string                 `json:"description" binding:"max=500"`
	Obligation  *models.ObligationType `json:"obligation" binding:"omitempty,obligation_type"`
}

// ListTransactions returns a paginated slice of the ledger, newest first.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Category: req.Category,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		filter.Type = &t
	}

	result, err := h.ledgerService.List(req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReplaceTransaction atomically swaps one transaction.
func (h *TransactionHandler) ReplaceTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReplaceTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.ledgerService.Replace(id, &models.Transaction{
		Date:        req.Date,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Obligation:  req.Obligation,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes one transaction. Deleting a missing id is
// treated as idempotent success.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.Remove(id); err != nil && !errors.Is(err, apperrors.ErrTransactionNotFound) {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
