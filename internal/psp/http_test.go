package psp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/pkg/resilience"
)

var fastRetry = resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}

func TestHTTPProviderCreatePaymentRetriesWithSameKey(t *testing.T) {
	var calls int32
	keys := make(chan string, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		keys <- r.Header.Get("Idempotency-Key")

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		var req createChargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(5000), req.Amount)
		assert.Equal(t, int64(1800), req.ExpiresIn)

		_ = json.NewEncoder(w).Encode(Charge{
			TxID:      "tx-1",
			QRCode:    "qr",
			CopyPaste: "000201",
			ExpiresAt: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
		})
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.Client(), srv.URL, "secret", resilience.NewCircuitBreaker("psp-test"), fastRetry)
	charge, err := provider.CreatePayment(context.Background(), 5000, "Dízimo", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", charge.TxID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	first, second := <-keys, <-keys
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestHTTPProviderClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"amount"}`))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.Client(), srv.URL, "", nil, fastRetry)
	_, err := provider.CreatePayment(context.Background(), 1, "", time.Minute)
	require.Error(t, err)
	assert.True(t, resilience.IsPermanent(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPProviderCheckStatus(t *testing.T) {
	paidAt := time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/charges/tx-paid":
			_ = json.NewEncoder(w).Encode(StatusResult{Status: models.PixStatusPaid, PaidAt: &paidAt})
		case "/v1/charges/tx-weird":
			_, _ = w.Write([]byte(`{"status":"REFUNDED"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.Client(), srv.URL, "", nil, fastRetry)

	result, err := provider.CheckStatus(context.Background(), "tx-paid")
	require.NoError(t, err)
	assert.Equal(t, "tx-paid", result.TxID)
	assert.Equal(t, models.PixStatusPaid, result.Status)
	require.NotNil(t, result.PaidAt)
	assert.True(t, paidAt.Equal(*result.PaidAt))

	_, err = provider.CheckStatus(context.Background(), "tx-weird")
	assert.ErrorContains(t, err, "unknown status")

	_, err = provider.CheckStatus(context.Background(), "tx-missing")
	assert.ErrorIs(t, err, ErrChargeNotFound)
}
