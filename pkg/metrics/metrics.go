package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesServed counts paid searches forwarded upstream
	SearchesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searches_served_total",
		Help: "Number of paid searches forwarded to the search provider",
	})

	// PaymentChallenges counts requests answered with a payment demand
	PaymentChallenges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_challenges_total",
		Help: "Number of requests answered with HTTP 402",
	})

	// MintQuotesCreated counts freshly minted invoices
	MintQuotesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mint_quotes_created_total",
		Help: "Number of mint quotes created",
	})

	// MintQuotesIssued counts quotes redeemed into ecash
	MintQuotesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mint_quotes_issued_total",
		Help: "Number of mint quotes issued as ecash",
	})

	// MeltPayments counts outbound payment attempts by final outcome
	MeltPayments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melt_payments_total",
		Help: "Number of melt payments by outcome",
	}, []string{"outcome"})
)
