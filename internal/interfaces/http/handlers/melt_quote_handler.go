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

type MeltQuoteHandler struct {
	usecase *usecases.MeltUsecase
}

func NewMeltQuoteHandler(usecase *usecases.MeltUsecase) *MeltQuoteHandler {
	return &MeltQuoteHandler{usecase: usecase}
}

type CreateMeltQuoteRequest struct {
	Request string `json:"request" binding:"required"` // bolt11 invoice to pay
}

type PayMeltQuoteRequest struct {
	Token string `json:"token"`
}

type meltQuoteResponse struct {
	QuoteID     string                  `json:"quote_id"`
	Amount      uint64                  `json:"amount"`
	FeeReserve  uint64                  `json:"fee_reserve"`
	State       entities.MeltQuoteState `json:"state"`
	Preimage    string                  `json:"payment_preimage,omitempty"`
	FeePaid     uint64                  `json:"fee_paid,omitempty"`
	Change      uint64                  `json:"change,omitempty"`
	ChangeToken string                  `json:"change_token,omitempty"`
	Expiry      int64                   `json:"expiry"`
}

func newMeltQuoteResponse(quote *entities.MeltQuote) meltQuoteResponse {
	resp := meltQuoteResponse{
		QuoteID:     quote.ID.String(),
		Amount:      quote.Amount,
		FeeReserve:  quote.FeeReserve,
		State:       quote.State,
		Preimage:    quote.PaymentPreimage,
		FeePaid:     quote.FeePaid,
		ChangeToken: quote.ChangeToken,
		Expiry:      quote.ExpiresAt.Unix(),
	}
	switch quote.State {
	case entities.MeltQuoteStatePaid:
		if spent := quote.Amount + quote.FeePaid; quote.AmountReceived > spent {
			resp.Change = quote.AmountReceived - spent
		}
	case entities.MeltQuoteStateFailed:
		resp.Change = quote.AmountReceived
	}
	return resp
}

// CreateQuote quotes the cost of paying a bolt11 invoice
// POST /api/v1/melt/quotes
func (h *MeltQuoteHandler) CreateQuote(c *gin.Context) {
	var req CreateMeltQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	quote, err := h.usecase.CreateQuote(c.Request.Context(), req.Request)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, newMeltQuoteResponse(quote))
}

// GetQuote returns the current state of a melt quote
// GET /api/v1/melt/quotes/:id
func (h *MeltQuoteHandler) GetQuote(c *gin.Context) {
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

	response.Success(c, http.StatusOK, newMeltQuoteResponse(quote))
}

// PayQuote redeems a token against the quote and sends the payment. The
// token may ride in the body or in the X-Cashu header.
// POST /api/v1/melt/quotes/:id/pay
func (h *MeltQuoteHandler) PayQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid quote ID"))
		return
	}

	var req PayMeltQuoteRequest
	_ = c.ShouldBindJSON(&req)
	token := req.Token
	if token == "" {
		token = c.GetHeader(TokenHeader)
	}
	if token == "" {
		response.Error(c, domainerrors.PaymentRequired("missing ecash token", nil))
		return
	}

	quote, err := h.usecase.Pay(c.Request.Context(), id, token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, newMeltQuoteResponse(quote))
}
