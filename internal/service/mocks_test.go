package service_test

import (
	"context"
	"database/sql"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/gateway"
	"carrental-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) CreatePending(ctx context.Context, attempt *domain.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByTxRef(ctx context.Context, txRef string) (*domain.PaymentAttempt, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentRepo) GetByGatewayID(ctx context.Context, gatewayID int64) (*domain.PaymentAttempt, error) {
	args := m.Called(ctx, gatewayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentRepo) CommitSuccess(ctx context.Context, tx *sql.Tx, txRef string, gatewayID int64) (bool, error) {
	args := m.Called(ctx, tx, txRef, gatewayID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, txRef, reason string) (bool, error) {
	args := m.Called(ctx, txRef, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentAttempt, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentRepo) ListByUser(ctx context.Context, userID int64) ([]domain.PaymentAttempt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAttempt), args.Error(1)
}

type MockCarRepo struct {
	mock.Mock
}

func (m *MockCarRepo) Create(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarRepo) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepo) Update(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCarRepo) List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Car, int32, error) {
	args := m.Called(ctx, onlyAvailable, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Car), int32(args.Int(1)), args.Error(2)
}

func (m *MockCarRepo) TryOccupy(ctx context.Context, tx *sql.Tx, carID, occupant int64, from, to time.Time, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, tx, carID, occupant, from, to, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarRepo) Release(ctx context.Context, carID int64) error {
	args := m.Called(ctx, carID)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, event *domain.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID int64, limit int32) ([]domain.NotificationEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NotificationEvent), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifyByReference(ctx context.Context, txRef string) (*gateway.Verification, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Verification), args.Error(1)
}

func (m *MockGateway) ParseWebhook(rawBody []byte, signature string) (*gateway.WebhookEvent, error) {
	args := m.Called(rawBody, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.WebhookEvent), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReceipt(ctx context.Context, contact service.Contact, data service.ReceiptData) {
	m.Called(ctx, contact, data)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

type MockSMSService struct {
	mock.Mock
}

func (m *MockSMSService) Send(ctx context.Context, to, message string) error {
	args := m.Called(ctx, to, message)
	return args.Error(0)
}
