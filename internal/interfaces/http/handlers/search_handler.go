package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"sat-search.backend/internal/domain/entities"
	domainerrors "sat-search.backend/internal/domain/errors"
	"sat-search.backend/internal/interfaces/http/response"
	"sat-search.backend/internal/usecases"
)

const (
	// TokenHeader carries the ecash token paying for the request
	TokenHeader = "X-Cashu"
	// InvoiceHeader carries the bolt11 invoice on a payment challenge
	InvoiceHeader = "X-Cashu-Invoice"
)

type SearchHandler struct {
	usecase *usecases.SearchUsecase
}

func NewSearchHandler(usecase *usecases.SearchUsecase) *SearchHandler {
	return &SearchHandler{usecase: usecase}
}

// Search serves one paid search
// GET /search?q=...
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, domainerrors.BadRequest("missing query parameter q"))
		return
	}

	token := c.GetHeader(TokenHeader)
	results, err := h.usecase.Search(c.Request.Context(), query, token)
	if err != nil {
		if isPaymentRequired(err) {
			h.challenge(c, err)
			return
		}
		response.Error(c, err)
		return
	}

	if results == nil {
		results = []entities.SearchResult{}
	}
	response.Success(c, http.StatusOK, results)
}

// Count returns the all-time paid search count
// GET /count
func (h *SearchHandler) Count(c *gin.Context) {
	count, err := h.usecase.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"all_time_search_count": count})
}

// challenge answers with a payment demand: the invoice rides in a header for
// wallet automation and in the body for everyone else.
func (h *SearchHandler) challenge(c *gin.Context, cause error) {
	quote, err := h.usecase.Challenge(c.Request.Context(), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "payment required"
	var appErr *domainerrors.AppError
	if errors.As(cause, &appErr) {
		message = appErr.Message
	}

	c.Header(InvoiceHeader, quote.Request)
	c.JSON(http.StatusPaymentRequired, gin.H{
		"code":     http.StatusPaymentRequired,
		"message":  message,
		"quote_id": quote.ID.String(),
		"request":  quote.Request,
		"amount":   quote.Amount,
		"expiry":   quote.ExpiresAt,
	})
}

func isPaymentRequired(err error) bool {
	var appErr *domainerrors.AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusPaymentRequired
}
