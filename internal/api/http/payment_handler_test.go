package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apihttp "carrental-backend/internal/api/http"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPaymentService lets each test pin exactly one behavior per endpoint.
type stubPaymentService struct {
	handleWebhook     func(ctx context.Context, rawBody []byte, signature string) (*service.ReconcileResult, error)
	handleCallback    func(ctx context.Context, txRef string) (*service.ReconcileResult, error)
	verifyTransaction func(ctx context.Context, txRef string) (*service.ReconcileResult, error)
}

func (s *stubPaymentService) InitiatePayment(ctx context.Context, userID int64, req service.InitiatePaymentRequest) (string, error) {
	return "", nil
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*service.ReconcileResult, error) {
	return s.handleWebhook(ctx, rawBody, signature)
}

func (s *stubPaymentService) HandleCallback(ctx context.Context, txRef string) (*service.ReconcileResult, error) {
	return s.handleCallback(ctx, txRef)
}

func (s *stubPaymentService) VerifyTransaction(ctx context.Context, txRef string) (*service.ReconcileResult, error) {
	return s.verifyTransaction(ctx, txRef)
}

func (s *stubPaymentService) ListUserPayments(ctx context.Context, userID int64) ([]domain.PaymentAttempt, error) {
	return nil, nil
}

func (s *stubPaymentService) Flush() {}

const (
	successURL = "https://rentals.example.com/booking/success"
	failureURL = "https://rentals.example.com/booking/failure"
)

func TestWebhookEndpoint(t *testing.T) {
	t.Run("PassesRawBodyAndSignatureThrough", func(t *testing.T) {
		body := `{"event":"charge.completed","data":{"tx_ref":"tx-1"}}`
		svc := &stubPaymentService{
			handleWebhook: func(ctx context.Context, rawBody []byte, signature string) (*service.ReconcileResult, error) {
				assert.Equal(t, body, string(rawBody))
				assert.Equal(t, "the-hash", signature)
				return &service.ReconcileResult{Outcome: service.OutcomeCommitted}, nil
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(body))
		req.Header.Set("verif-hash", "the-hash")
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "committed", resp["status"])
	})

	t.Run("BadSignatureIsUnauthorized", func(t *testing.T) {
		svc := &stubPaymentService{
			handleWebhook: func(ctx context.Context, rawBody []byte, signature string) (*service.ReconcileResult, error) {
				return nil, domain.ErrBadSignature
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GatewayOutageAsksForRetry", func(t *testing.T) {
		svc := &stubPaymentService{
			handleWebhook: func(ctx context.Context, rawBody []byte, signature string) (*service.ReconcileResult, error) {
				return nil, domain.ErrGatewayUnavailable
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("DuplicateEventStillAcknowledged", func(t *testing.T) {
		svc := &stubPaymentService{
			handleWebhook: func(ctx context.Context, rawBody []byte, signature string) (*service.ReconcileResult, error) {
				return &service.ReconcileResult{Outcome: service.OutcomeAlreadyCommitted}, nil
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVerifyEndpointOwnership(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", 60, 60)
	authMW := apihttp.NewAuthMiddleware(tokens)

	svc := &stubPaymentService{
		verifyTransaction: func(ctx context.Context, txRef string) (*service.ReconcileResult, error) {
			return &service.ReconcileResult{
				Outcome: service.OutcomeAlreadyCommitted,
				Attempt: &domain.PaymentAttempt{TxRef: txRef, UserID: 42, Email: "jane@example.com", PhoneNumber: "+15550001111"},
			}, nil
		},
	}
	handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)
	router := mux.NewRouter()
	router.Handle("/api/payment/verify/{txRef}", authMW.Require(http.HandlerFunc(handler.Verify))).Methods(http.MethodGet)

	doVerify := func(t *testing.T, userID int64, role domain.UserRole) *httptest.ResponseRecorder {
		token, err := tokens.GenerateAccessToken(userID, "someone@example.com", role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/payment/verify/tx-1767000000000-42", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("PayerSeesOwnAttempt", func(t *testing.T) {
		rec := doVerify(t, 42, domain.UserRoleCustomer)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "jane@example.com")
	})

	t.Run("OtherUserIsRefused", func(t *testing.T) {
		rec := doVerify(t, 7, domain.UserRoleCustomer)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotContains(t, rec.Body.String(), "jane@example.com")
		assert.NotContains(t, rec.Body.String(), "+15550001111")
	})

	t.Run("AdminSeesAnyAttempt", func(t *testing.T) {
		rec := doVerify(t, 7, domain.UserRoleAdmin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCallbackEndpoint(t *testing.T) {
	t.Run("SuccessfulPaymentRedirectsToSuccess", func(t *testing.T) {
		svc := &stubPaymentService{
			handleCallback: func(ctx context.Context, txRef string) (*service.ReconcileResult, error) {
				assert.Equal(t, "tx-1", txRef)
				return &service.ReconcileResult{Outcome: service.OutcomeCommitted}, nil
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodGet, "/api/payment/callback?tx_ref=tx-1", nil)
		rec := httptest.NewRecorder()
		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, successURL, rec.Header().Get("Location"))
	})

	t.Run("FailureRedirectsWithoutLeakingDetail", func(t *testing.T) {
		svc := &stubPaymentService{
			handleCallback: func(ctx context.Context, txRef string) (*service.ReconcileResult, error) {
				return nil, domain.ErrGatewayUnavailable
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodGet, "/api/payment/callback?tx_ref=tx-1", nil)
		rec := httptest.NewRecorder()
		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, failureURL, rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "gateway")
	})

	t.Run("DeclinedPaymentRedirectsToFailure", func(t *testing.T) {
		svc := &stubPaymentService{
			handleCallback: func(ctx context.Context, txRef string) (*service.ReconcileResult, error) {
				return &service.ReconcileResult{Outcome: service.OutcomeDeclined}, nil
			},
		}
		handler := apihttp.NewPaymentHandler(svc, successURL, failureURL)

		req := httptest.NewRequest(http.MethodGet, "/api/payment/callback?tx_ref=tx-1", nil)
		rec := httptest.NewRecorder()
		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, failureURL, rec.Header().Get("Location"))
	})
}
