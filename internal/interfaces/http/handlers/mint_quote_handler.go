package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"sat-search.backend/internal/domain/entities"
	domainerrors "sat-search.backend/internal/domain/errors"
	"sat-search.backend/internal/interfaces/http/response"
	"sat-search.backend/internal/usecases"
)

type MintQuoteHandler struct {
	usecase *usecases.MintQuoteUsecase
}

func NewMintQuoteHandler(usecase *usecases.MintQuoteUsecase) *MintQuoteHandler {
	return &MintQuoteHandler{usecase: usecase}
}

type CreateMintQuoteRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

type mintQuoteResponse struct {
	QuoteID   string                  `json:"quote_id"`
	Amount    uint64                  `json:"amount"`
	Request   string                  `json:"request"`
	State     entities.MintQuoteState `json:"state"`
	Expiry    int64                   `json:"expiry"`
}

func newMintQuoteResponse(quote *entities.MintQuote) mintQuoteResponse {
	return mintQuoteResponse{
		QuoteID: quote.ID.String(),
		Amount:  quote.Amount,
		Request: quote.Request,
		State:   quote.State,
		Expiry:  quote.ExpiresAt.Unix(),
	}
}

// CreateQuote creates a mint quote for the requested amount
// POST /api/v1/mint/quotes
func (h *MintQuoteHandler) CreateQuote(c *gin.Context) {
	var req CreateMintQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	quote, err := h.usecase.CreateQuote(c.Request.Context(), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, newMintQuoteResponse(quote))
}

// GetQuote returns the current state of a mint quote
// GET /api/v1/mint/quotes/:id
func (h *MintQuoteHandler) GetQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid quote ID"))
		return
	}

	quote, err := h.usecase.GetQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, newMintQuoteResponse(quote))
}

// IssueQuote redeems a paid quote into ecash denominations
// POST /api/v1/mint/quotes/:id/issue
func (h *MintQuoteHandler) IssueQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid quote ID"))
		return
	}

	quote, denominations, err := h.usecase.IssueQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"quote_id":      quote.ID.String(),
		"amount":        quote.Amount,
		"state":         quote.State,
		"denominations": denominations,
	})
}
