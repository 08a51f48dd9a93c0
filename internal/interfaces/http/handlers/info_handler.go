package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"sat-search.backend/internal/interfaces/http/response"
	"sat-search.backend/internal/usecases"
)

type InfoHandler struct {
	name    string
	url     string
	mintURL string
	search  *usecases.SearchUsecase
}

func NewInfoHandler(name, url, mintURL string, search *usecases.SearchUsecase) *InfoHandler {
	return &InfoHandler{
		name:    name,
		url:     url,
		mintURL: mintURL,
		search:  search,
	}
}

// Info describes the service and the current price of a search
// GET /info
func (h *InfoHandler) Info(c *gin.Context) {
	price, err := h.search.PricePerSearch()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"name":             h.name,
		"url":              h.url,
		"mint_url":         h.mintURL,
		"price_per_search": price,
		"unit":             "sat",
	})
}
