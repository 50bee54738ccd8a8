package gateway_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestParseWebhook(t *testing.T) {
	client := gateway.NewFlutterwaveClient("", "sk-test", "hook-secret", time.Second)
	body := []byte(`{"event":"charge.completed","data":{"id":9001,"tx_ref":"tx-1767000000000-42","status":"successful","amount":200}}`)

	t.Run("ValidSignature", func(t *testing.T) {
		event, err := client.ParseWebhook(body, sign("hook-secret", body))
		require.NoError(t, err)
		assert.Equal(t, "charge.completed", event.Event)
		assert.Equal(t, "tx-1767000000000-42", event.TxRef)
		assert.Equal(t, int64(9001), event.TransactionID)
		assert.True(t, event.Amount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("MissingSignature", func(t *testing.T) {
		_, err := client.ParseWebhook(body, "")
		assert.ErrorIs(t, err, domain.ErrBadSignature)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := client.ParseWebhook(body, sign("other-secret", body))
		assert.ErrorIs(t, err, domain.ErrBadSignature)
	})

	t.Run("TamperedBody", func(t *testing.T) {
		sig := sign("hook-secret", body)
		tampered := []byte(`{"event":"charge.completed","data":{"id":9001,"tx_ref":"tx-1767000000000-42","status":"successful","amount":999}}`)
		_, err := client.ParseWebhook(tampered, sig)
		assert.ErrorIs(t, err, domain.ErrBadSignature)
	})

	t.Run("MissingTxRef", func(t *testing.T) {
		empty := []byte(`{"event":"charge.completed","data":{"status":"successful"}}`)
		_, err := client.ParseWebhook(empty, sign("hook-secret", empty))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestVerifyByReference(t *testing.T) {
	t.Run("Successful", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transactions/verify_by_reference", r.URL.Path)
			assert.Equal(t, "tx-1767000000000-42", r.URL.Query().Get("tx_ref"))
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			w.Write([]byte(`{"status":"success","data":{"id":9001,"tx_ref":"tx-1767000000000-42","status":"successful","amount":200,"currency":"USD","meta":{"user_id":42,"car_ids":[3]}}}`))
		}))
		defer srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		v, err := client.VerifyByReference(context.Background(), "tx-1767000000000-42")
		require.NoError(t, err)
		assert.Equal(t, gateway.StatusSuccessful, v.Status)
		assert.Equal(t, int64(9001), v.TransactionID)
		assert.True(t, v.Amount.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, int64(42), v.Meta.UserID)
	})

	t.Run("UnknownReference", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		_, err := client.VerifyByReference(context.Background(), "tx-missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		_, err := client.VerifyByReference(context.Background(), "tx-1767000000000-42")
		assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	})

	t.Run("TransportError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		_, err := client.VerifyByReference(context.Background(), "tx-1767000000000-42")
		assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	})
}

func TestCreateCheckout(t *testing.T) {
	req := gateway.CheckoutRequest{
		TxRef:       "tx-1767000000000-42",
		Amount:      decimal.NewFromInt(200),
		Currency:    "USD",
		RedirectURL: "https://rentals.example.com/api/payment/callback",
		Customer:    gateway.Customer{Email: "jane@example.com", PhoneNumber: "+1555", Name: "Jane"},
		Title:       "Car Rental Payment",
		Meta:        gateway.Metadata{UserID: 42, CarIDs: []int64{3}},
	}

	t.Run("ReturnsHostedLink", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/payments", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			w.Write([]byte(`{"status":"success","data":{"link":"https://checkout.flutterwave.com/pay/abc123"}}`))
		}))
		defer srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		link, err := client.CreateCheckout(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.flutterwave.com/pay/abc123", link)
	})

	t.Run("Rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"error","message":"invalid currency"}`))
		}))
		defer srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		_, err := client.CreateCheckout(context.Background(), req)
		assert.ErrorContains(t, err, "invalid currency")
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := gateway.NewFlutterwaveClient(srv.URL, "sk-test", "hook-secret", time.Second)
		_, err := client.CreateCheckout(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	})
}
