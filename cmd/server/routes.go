package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sat-search.backend/internal/interfaces/http/handlers"
	"sat-search.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	searchHandler    *handlers.SearchHandler
	mintQuoteHandler *handlers.MintQuoteHandler
	meltQuoteHandler *handlers.MeltQuoteHandler
	infoHandler      *handlers.InfoHandler
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Metered search surface (public, paid per request)
	r.GET("/search", d.searchHandler.Search)
	r.GET("/count", d.searchHandler.Count)
	r.GET("/info", d.infoHandler.Info)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		mint := v1.Group("/mint/quotes")
		{
			mint.POST("", d.mintQuoteHandler.CreateQuote)
			mint.GET("/:id", d.mintQuoteHandler.GetQuote)
			mint.POST("/:id/issue", d.mintQuoteHandler.IssueQuote)
		}

		melt := v1.Group("/melt/quotes")
		{
			melt.POST("", d.meltQuoteHandler.CreateQuote)
			melt.GET("/:id", d.meltQuoteHandler.GetQuote)
			melt.POST("/:id/pay", middleware.IdempotencyMiddleware(), d.meltQuoteHandler.PayQuote)
		}
	}
}
