package handler

import (
	"context"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/money"
	"paygate-server/internal/domain/order"
	"paygate-server/internal/domain/vault"
	"paygate-server/internal/domain/webhook"

	"github.com/stretchr/testify/mock"
)

// MockConfigRepository モックマーチャント設定リポジトリ
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) FindByTenantID(ctx context.Context, tenantID string) (*merchant.Config, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Config), args.Error(1)
}

// MockOrderProcessor モック注文プロセッサ
type MockOrderProcessor struct {
	mock.Mock
}

func (m *MockOrderProcessor) CreateOrder(ctx context.Context, cfg *merchant.Config, input order.CreateOrderInput) (*order.ProcessorOrder, error) {
	args := m.Called(ctx, cfg, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ProcessorOrder), args.Error(1)
}

func (m *MockOrderProcessor) CaptureOrder(ctx context.Context, cfg *merchant.Config, orderID string) (*order.ProcessorOrder, error) {
	args := m.Called(ctx, cfg, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ProcessorOrder), args.Error(1)
}

func (m *MockOrderProcessor) AuthorizeOrder(ctx context.Context, cfg *merchant.Config, orderID string) (*order.ProcessorOrder, error) {
	args := m.Called(ctx, cfg, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ProcessorOrder), args.Error(1)
}

func (m *MockOrderProcessor) UpdateOrderAmount(ctx context.Context, cfg *merchant.Config, orderID string, amount money.Amount, breakdown *order.Breakdown) error {
	args := m.Called(ctx, cfg, orderID, amount, breakdown)
	return args.Error(0)
}

// MockTokenVault モック決済手段保管プロセッサ
type MockTokenVault struct {
	mock.Mock
}

func (m *MockTokenVault) CreateSetupToken(ctx context.Context, cfg *merchant.Config, input vault.CreateSetupTokenInput) (*vault.SetupToken, error) {
	args := m.Called(ctx, cfg, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vault.SetupToken), args.Error(1)
}

func (m *MockTokenVault) GetSetupToken(ctx context.Context, cfg *merchant.Config, setupTokenID string) (*vault.SetupToken, error) {
	args := m.Called(ctx, cfg, setupTokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vault.SetupToken), args.Error(1)
}

func (m *MockTokenVault) CreatePaymentToken(ctx context.Context, cfg *merchant.Config, setupTokenID string) (*vault.PaymentToken, error) {
	args := m.Called(ctx, cfg, setupTokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vault.PaymentToken), args.Error(1)
}

func (m *MockTokenVault) ListPaymentTokens(ctx context.Context, cfg *merchant.Config, customerID string) ([]*vault.PaymentToken, error) {
	args := m.Called(ctx, cfg, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vault.PaymentToken), args.Error(1)
}

func (m *MockTokenVault) DeletePaymentToken(ctx context.Context, cfg *merchant.Config, tokenID string) error {
	args := m.Called(ctx, cfg, tokenID)
	return args.Error(0)
}

// MockCustomerMappingRepository モックVault顧客マッピングリポジトリ
type MockCustomerMappingRepository struct {
	mock.Mock
}

func (m *MockCustomerMappingRepository) FindByTenantAndUser(ctx context.Context, tenantID, platformUserID string) (*vault.CustomerMapping, error) {
	args := m.Called(ctx, tenantID, platformUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vault.CustomerMapping), args.Error(1)
}

func (m *MockCustomerMappingRepository) Create(ctx context.Context, mapping *vault.CustomerMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// MockSignatureVerifier モック署名検証
type MockSignatureVerifier struct {
	mock.Mock
}

func (m *MockSignatureVerifier) VerifySignature(ctx context.Context, cfg *merchant.Config, headers webhook.SignatureHeaders, rawBody []byte) error {
	args := m.Called(ctx, cfg, headers, rawBody)
	return args.Error(0)
}

// MockProcessedEventRepository モック処理済みイベントリポジトリ
type MockProcessedEventRepository struct {
	mock.Mock
}

func (m *MockProcessedEventRepository) MarkProcessed(ctx context.Context, transmissionID, eventID, eventType string) error {
	args := m.Called(ctx, transmissionID, eventID, eventType)
	return args.Error(0)
}
