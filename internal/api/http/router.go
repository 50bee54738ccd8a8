package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all HTTP routes. The webhook and callback endpoints are
// deliberately unauthenticated: the webhook authenticates via its signature,
// and the callback is a browser redirect that triggers server-side
// re-verification.
func NewRouter(
	authMW *AuthMiddleware,
	authHandler *AuthHandler,
	carHandler *CarHandler,
	paymentHandler *PaymentHandler,
) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.Handle("/auth/profile", authMW.Require(http.HandlerFunc(authHandler.Profile))).Methods(http.MethodGet)

	// Cars
	api.HandleFunc("/cars", carHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/cars/{id:[0-9]+}", carHandler.Get).Methods(http.MethodGet)
	api.Handle("/cars", authMW.RequireAdmin(http.HandlerFunc(carHandler.Create))).Methods(http.MethodPost)
	api.Handle("/cars/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(carHandler.Update))).Methods(http.MethodPut)
	api.Handle("/cars/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(carHandler.Delete))).Methods(http.MethodDelete)
	api.Handle("/cars/{id:[0-9]+}/rent", authMW.Require(http.HandlerFunc(carHandler.Rent))).Methods(http.MethodPost)
	api.Handle("/cars/{id:[0-9]+}/return", authMW.RequireAdmin(http.HandlerFunc(carHandler.Return))).Methods(http.MethodPost)

	// Payments
	api.Handle("/payment/pay", authMW.Require(http.HandlerFunc(paymentHandler.InitiatePayment))).Methods(http.MethodPost)
	api.HandleFunc("/payment/webhook", paymentHandler.Webhook).Methods(http.MethodPost)
	api.HandleFunc("/payment/callback", paymentHandler.Callback).Methods(http.MethodGet)
	api.Handle("/payment/verify/{txRef}", authMW.Require(http.HandlerFunc(paymentHandler.Verify))).Methods(http.MethodGet)
	api.Handle("/payment/history", authMW.Require(http.HandlerFunc(paymentHandler.History))).Methods(http.MethodGet)

	return r
}
