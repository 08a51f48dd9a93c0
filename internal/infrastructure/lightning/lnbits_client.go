package lightning

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/imroc/req"
	"go.uber.org/zap"
	"sat-search.backend/pkg/logger"
)

type invoiceParams struct {
	Out    bool   `json:"out"` // false to receive, true to pay
	Amount uint64 `json:"amount"`
	Memo   string `json:"memo,omitempty"`
	Expiry uint64 `json:"expiry,omitempty"`
}

type paymentParams struct {
	Out    bool   `json:"out"`
	Bolt11 string `json:"bolt11"`
}

type invoiceResponse struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
}

type paymentStatusResponse struct {
	Paid     bool   `json:"paid"`
	Preimage string `json:"preimage"`
	Details  struct {
		Pending bool  `json:"pending"`
		Fee     int64 `json:"fee"` // msat
	} `json:"details"`
}

type apiError struct {
	Detail string `json:"detail"`
}

// LnbitsClient implements Client against the LNbits REST API
type LnbitsClient struct {
	url        string
	adminKey   string
	invoiceKey string
	timeout    time.Duration
	r          *req.Req
}

func NewLnbitsClient(url, adminKey, invoiceKey string, timeout time.Duration) *LnbitsClient {
	r := req.New()
	r.SetTimeout(timeout)
	return &LnbitsClient{
		url:        url,
		adminKey:   adminKey,
		invoiceKey: invoiceKey,
		timeout:    timeout,
		r:          r,
	}
}

func (c *LnbitsClient) header(key string) req.Header {
	return req.Header{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"X-Api-Key":    key,
	}
}

func (c *LnbitsClient) CreateInvoice(ctx context.Context, amountSats uint64, memo string, expiry time.Duration) (*Invoice, error) {
	params := invoiceParams{
		Out:    false,
		Amount: amountSats,
		Memo:   memo,
		Expiry: uint64(expiry.Seconds()),
	}

	resp, err := c.r.Post(c.url+"/api/v1/payments", c.header(c.invoiceKey), req.BodyJSON(&params))
	if err != nil {
		return nil, &BackendError{Op: "create_invoice", Retryable: true, Err: err}
	}
	if err := c.checkStatus(resp, "create_invoice"); err != nil {
		return nil, err
	}

	var inv invoiceResponse
	if err := resp.ToJSON(&inv); err != nil {
		return nil, &BackendError{Op: "create_invoice", Retryable: false, Err: err}
	}
	return &Invoice{PaymentHash: inv.PaymentHash, PaymentRequest: inv.PaymentRequest}, nil
}

func (c *LnbitsClient) InvoiceStatus(ctx context.Context, paymentHash string) (InvoiceState, error) {
	resp, err := c.r.Get(c.url+"/api/v1/payments/"+paymentHash, c.header(c.invoiceKey))
	if err != nil {
		return "", &BackendError{Op: "invoice_status", Retryable: true, Err: err}
	}
	if err := c.checkStatus(resp, "invoice_status"); err != nil {
		return "", err
	}

	var status paymentStatusResponse
	if err := resp.ToJSON(&status); err != nil {
		return "", &BackendError{Op: "invoice_status", Retryable: false, Err: err}
	}
	if status.Paid {
		return InvoiceStatePaid, nil
	}
	return InvoiceStateUnpaid, nil
}

// PayInvoice issues the outbound payment. A transport error here does NOT
// mean the payment was not sent; the caller must resolve the true outcome
// through PaymentStatus before touching the same quote again.
func (c *LnbitsClient) PayInvoice(ctx context.Context, bolt11 string, maxFeeSats uint64) (*PaymentResult, error) {
	logger.Debug(ctx, "paying invoice", zap.Uint64("max_fee_sats", maxFeeSats))

	params := paymentParams{Out: true, Bolt11: bolt11}
	resp, err := c.r.Post(c.url+"/api/v1/payments", c.header(c.adminKey), req.BodyJSON(&params))
	if err != nil {
		return nil, &BackendError{Op: "pay_invoice", Retryable: true, Err: err}
	}

	code := resp.Response().StatusCode
	if code >= http.StatusInternalServerError {
		return nil, &BackendError{Op: "pay_invoice", Retryable: true, Err: httpError(resp, code)}
	}
	if code >= http.StatusMultipleChoices {
		// node rejected the payment outright: bad invoice, no route,
		// insufficient balance
		return &PaymentResult{State: PaymentStateFailed}, nil
	}

	var inv invoiceResponse
	if err := resp.ToJSON(&inv); err != nil {
		return nil, &BackendError{Op: "pay_invoice", Retryable: true, Err: err}
	}

	// the pay call resolved; fetch preimage and fee from the payment record
	return c.PaymentStatus(ctx, inv.PaymentHash)
}

func (c *LnbitsClient) PaymentStatus(ctx context.Context, paymentHash string) (*PaymentResult, error) {
	resp, err := c.r.Get(c.url+"/api/v1/payments/"+paymentHash, c.header(c.adminKey))
	if err != nil {
		return nil, &BackendError{Op: "payment_status", Retryable: true, Err: err}
	}

	code := resp.Response().StatusCode
	if code == http.StatusNotFound {
		return &PaymentResult{State: PaymentStateUnknown}, nil
	}
	if err := c.checkStatus(resp, "payment_status"); err != nil {
		return nil, err
	}

	var status paymentStatusResponse
	if err := resp.ToJSON(&status); err != nil {
		return nil, &BackendError{Op: "payment_status", Retryable: false, Err: err}
	}

	switch {
	case status.Paid:
		return &PaymentResult{
			State:       PaymentStatePaid,
			Preimage:    status.Preimage,
			FeePaidSats: msatToSatCeil(status.Details.Fee),
		}, nil
	case status.Details.Pending:
		return &PaymentResult{State: PaymentStatePending}, nil
	default:
		return &PaymentResult{State: PaymentStateFailed}, nil
	}
}

func (c *LnbitsClient) checkStatus(resp *req.Resp, op string) error {
	code := resp.Response().StatusCode
	if code < http.StatusMultipleChoices {
		return nil
	}
	retryable := code >= http.StatusInternalServerError
	return &BackendError{Op: op, Retryable: retryable, Err: httpError(resp, code)}
}

func httpError(resp *req.Resp, code int) error {
	var apiErr apiError
	if err := resp.ToJSON(&apiErr); err == nil && apiErr.Detail != "" {
		return fmt.Errorf("status %d: %s", code, apiErr.Detail)
	}
	return fmt.Errorf("status %d", code)
}

func msatToSatCeil(msat int64) uint64 {
	if msat < 0 {
		msat = -msat // LNbits reports outgoing fees as negative msat
	}
	return uint64((msat + 999) / 1000)
}
