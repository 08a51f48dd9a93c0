package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/imroc/req"
	"go.uber.org/zap"
	"sat-search.backend/internal/domain/entities"
	domainerrors "sat-search.backend/internal/domain/errors"
	"sat-search.backend/pkg/logger"
)

// Provider is the upstream search collaborator
type Provider interface {
	Search(ctx context.Context, query string) ([]entities.SearchResult, error)
}

type kagiResponse struct {
	Meta struct {
		Node string `json:"node"`
		MS   int64  `json:"ms"`
	} `json:"meta"`
	Data []kagiObject `json:"data"`
}

// kagiObject is either a search result (t==0) or a related-searches block
// (t==1)
type kagiObject struct {
	T         int      `json:"t"`
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Snippet   string   `json:"snippet"`
	Published string   `json:"published"`
	List      []string `json:"list"`
}

// KagiClient implements Provider against the Kagi search API
type KagiClient struct {
	apiURL    string
	authToken string
	r         *req.Req
}

func NewKagiClient(apiURL, authToken string, timeout time.Duration) *KagiClient {
	r := req.New()
	r.SetTimeout(timeout)
	return &KagiClient{
		apiURL:    apiURL,
		authToken: authToken,
		r:         r,
	}
}

func (c *KagiClient) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	header := req.Header{
		"Accept":        "application/json",
		"Authorization": fmt.Sprintf("Bot %s", c.authToken),
	}

	resp, err := c.r.Get(c.apiURL, header, req.Param{"q": query})
	if err != nil {
		logger.Error(ctx, "search provider request failed", zap.Error(err))
		return nil, domainerrors.ErrUpstream
	}
	if resp.Response().StatusCode >= http.StatusMultipleChoices {
		logger.Error(ctx, "search provider returned error",
			zap.Int("status", resp.Response().StatusCode))
		return nil, domainerrors.ErrUpstream
	}

	var kr kagiResponse
	if err := resp.ToJSON(&kr); err != nil {
		logger.Error(ctx, "invalid search provider response", zap.Error(err))
		return nil, domainerrors.ErrUpstream
	}

	logger.Debug(ctx, "search provider responded",
		zap.String("node", kr.Meta.Node), zap.Int64("provider_ms", kr.Meta.MS))

	var results []entities.SearchResult
	for _, obj := range kr.Data {
		if obj.T != 0 {
			continue
		}
		results = append(results, entities.SearchResult{
			URL:         obj.URL,
			Title:       obj.Title,
			Description: obj.Snippet,
			Age:         obj.Published,
		})
	}
	return results, nil
}
