package lightning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sat-search.backend/pkg/logger"
)

func init() {
	logger.Init("development")
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *LnbitsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLnbitsClient(srv.URL, "admin-key", "invoice-key", 5*time.Second)
}

func TestLnbitsClient_CreateInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/payments", r.URL.Path)
		assert.Equal(t, "invoice-key", r.Header.Get("X-Api-Key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, false, body["out"])
		assert.Equal(t, float64(21), body["amount"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"payment_hash":    "hash123",
			"payment_request": "lnbc210n1...",
		})
	})

	inv, err := client.CreateInvoice(context.Background(), 21, "test", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "hash123", inv.PaymentHash)
	assert.Equal(t, "lnbc210n1...", inv.PaymentRequest)
}

func TestLnbitsClient_CreateInvoice_ServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"node offline"}`, http.StatusInternalServerError)
	})

	_, err := client.CreateInvoice(context.Background(), 21, "test", 15*time.Minute)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestLnbitsClient_CreateInvoice_BadRequestIsFatal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"bad key"}`, http.StatusUnauthorized)
	})

	_, err := client.CreateInvoice(context.Background(), 21, "test", 15*time.Minute)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestLnbitsClient_InvoiceStatus(t *testing.T) {
	paid := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payments/hash123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"paid": paid})
	})

	state, err := client.InvoiceStatus(context.Background(), "hash123")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStateUnpaid, state)

	paid = true
	state, err = client.InvoiceStatus(context.Background(), "hash123")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatePaid, state)
}

func TestLnbitsClient_PayInvoice_Settled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.Equal(t, "admin-key", r.Header.Get("X-Api-Key"))
			json.NewEncoder(w).Encode(map[string]string{"payment_hash": "hash123"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"paid":     true,
			"preimage": "pre123",
			"details":  map[string]interface{}{"pending": false, "fee": -2500},
		})
	})

	result, err := client.PayInvoice(context.Background(), "lnbc10u1...", 10)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatePaid, result.State)
	assert.Equal(t, "pre123", result.Preimage)
	assert.Equal(t, uint64(3), result.FeePaidSats) // 2500 msat rounds up
}

func TestLnbitsClient_PayInvoice_RejectedIsFailedNotError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no route"}`, http.StatusBadRequest)
	})

	result, err := client.PayInvoice(context.Background(), "lnbc10u1...", 10)
	require.NoError(t, err)
	assert.Equal(t, PaymentStateFailed, result.State)
}

func TestLnbitsClient_PayInvoice_ServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"timeout"}`, http.StatusInternalServerError)
	})

	_, err := client.PayInvoice(context.Background(), "lnbc10u1...", 10)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestLnbitsClient_PaymentStatus_States(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]interface{}
		want   PaymentState
	}{
		{
			name:   "no record means unknown",
			status: http.StatusNotFound,
			want:   PaymentStateUnknown,
		},
		{
			name:   "pending",
			status: http.StatusOK,
			body: map[string]interface{}{
				"paid":    false,
				"details": map[string]interface{}{"pending": true},
			},
			want: PaymentStatePending,
		},
		{
			name:   "failed",
			status: http.StatusOK,
			body: map[string]interface{}{
				"paid":    false,
				"details": map[string]interface{}{"pending": false},
			},
			want: PaymentStateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != nil {
					json.NewEncoder(w).Encode(tt.body)
				}
			})

			result, err := client.PaymentStatus(context.Background(), "hash123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.State)
		})
	}
}

func TestMsatToSatCeil(t *testing.T) {
	assert.Equal(t, uint64(0), msatToSatCeil(0))
	assert.Equal(t, uint64(1), msatToSatCeil(1))
	assert.Equal(t, uint64(1), msatToSatCeil(1000))
	assert.Equal(t, uint64(2), msatToSatCeil(1001))
	assert.Equal(t, uint64(3), msatToSatCeil(-2500))
}
