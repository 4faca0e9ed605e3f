package webhook

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"paygate-server/internal/application/checkout"
	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/webhook"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
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

// MockOrderCapturer モック注文キャプチャ
type MockOrderCapturer struct {
	mock.Mock
}

func (m *MockOrderCapturer) CaptureOrder(ctx context.Context, tenantID, orderID string) (*checkout.OrderActionResponse, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.OrderActionResponse), args.Error(1)
}

func newTestService(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) *WebhookApplicationService {
	tracer := otel.Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("test")
	if err != nil {
		panic(err)
	}
	return NewWebhookApplicationService(cfgRepo, verifier, processedRepo, logger, metrics)
}

func testLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(otel.Tracer("test"))
}

func testConfig() *merchant.Config {
	return merchant.MustNewConfig("tenant-1", "client-abc", "secret-xyz", merchant.EnvironmentSandbox, "M123", "WH-456", 2.5)
}

func completeHeaders() webhook.SignatureHeaders {
	return webhook.SignatureHeaders{
		TransmissionID:   "tx-1",
		TransmissionTime: "2026-01-15T10:00:00Z",
		TransmissionSig:  "sig-abc",
		CertURL:          "https://api.example.com/cert",
		AuthAlgo:         "SHA256withRSA",
	}
}

func eventBody(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "WH-EVT-1",
		"event_type": "%s",
		"create_time": "2026-01-15T10:00:00Z",
		"resource": {"id": "RES-1", "custom_id": "order-ref-1"}
	}`, eventType))
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name      string
		headers   webhook.SignatureHeaders
		body      []byte
		setupMock func(*MockConfigRepository, *MockSignatureVerifier, *MockProcessedEventRepository)
		handler   func(*int) EventHandler
		wantError error
		wantCalls int
	}{
		{
			name:    "正常系: 検証済みイベントがハンドラに届く",
			headers: completeHeaders(),
			body:    eventBody("PAYMENT.CAPTURE.COMPLETED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
				processedRepo.On("MarkProcessed", mock.Anything, "tx-1", "WH-EVT-1", "PAYMENT.CAPTURE.COMPLETED").Return(nil)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantCalls: 1,
		},
		{
			name: "異常系: ヘッダー欠落は検証APIを呼ばずに拒否する",
			headers: webhook.SignatureHeaders{
				TransmissionID: "tx-1",
				// 残り4ヘッダーが欠落
			},
			body:      eventBody("PAYMENT.CAPTURE.COMPLETED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantError: webhook.ErrMissingSignatureHeaders,
		},
		{
			name:    "異常系: 署名検証失敗は拒否する",
			headers: completeHeaders(),
			body:    eventBody("PAYMENT.CAPTURE.COMPLETED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(webhook.ErrSignatureVerificationFailed)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantError: webhook.ErrSignatureVerificationFailed,
		},
		{
			name:    "異常系: 検証器が解析不能と判定したボディは解析不能として拒否する",
			headers: completeHeaders(),
			body:    []byte(`not json`),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(webhook.ErrUnparseableBody)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantError: webhook.ErrUnparseableBody,
		},
		{
			name:    "異常系: 検証APIの障害は受理せず再配送に委ねる",
			headers: completeHeaders(),
			body:    eventBody("PAYMENT.CAPTURE.COMPLETED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(webhook.ErrVerificationUnavailable)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantError: webhook.ErrVerificationUnavailable,
		},
		{
			name:    "異常系: 検証は通るがボディが壊れている",
			headers: completeHeaders(),
			body:    []byte(`{"id": broken`),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantError: webhook.ErrUnparseableBody,
		},
		{
			name:    "正常系: 重複配送は処理せず受理する",
			headers: completeHeaders(),
			body:    eventBody("PAYMENT.CAPTURE.COMPLETED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
				processedRepo.On("MarkProcessed", mock.Anything, "tx-1", "WH-EVT-1", "PAYMENT.CAPTURE.COMPLETED").Return(webhook.ErrEventAlreadyProcessed)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantCalls: 0,
		},
		{
			name:    "正常系: 未知のイベント種別は受理だけする",
			headers: completeHeaders(),
			body:    eventBody("BILLING.SUBSCRIPTION.CREATED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
				processedRepo.On("MarkProcessed", mock.Anything, "tx-1", "WH-EVT-1", "BILLING.SUBSCRIPTION.CREATED").Return(nil)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return nil
				}
			},
			wantCalls: 0,
		},
		{
			name:    "正常系: ハンドラの失敗は受理して再配送を止める",
			headers: completeHeaders(),
			body:    eventBody("PAYMENT.CAPTURE.COMPLETED"),
			setupMock: func(cfgRepo *MockConfigRepository, verifier *MockSignatureVerifier, processedRepo *MockProcessedEventRepository) {
				cfgRepo.On("FindByTenantID", mock.Anything, "tenant-1").Return(testConfig(), nil)
				verifier.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
				processedRepo.On("MarkProcessed", mock.Anything, "tx-1", "WH-EVT-1", "PAYMENT.CAPTURE.COMPLETED").Return(nil)
			},
			handler: func(calls *int) EventHandler {
				return func(ctx context.Context, tenantID string, event *webhook.Event) error {
					*calls++
					return errors.New("downstream failure")
				}
			},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgRepo := new(MockConfigRepository)
			verifier := new(MockSignatureVerifier)
			processedRepo := new(MockProcessedEventRepository)
			tt.setupMock(cfgRepo, verifier, processedRepo)

			svc := newTestService(cfgRepo, verifier, processedRepo)

			var calls int
			svc.RegisterHandler("PAYMENT.CAPTURE.COMPLETED", tt.handler(&calls))

			err := svc.Process(context.Background(), "tenant-1", tt.headers, tt.body)
			if tt.wantError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantError)
				assert.Zero(t, calls, "拒否されたイベントはハンドラに届かない")
				verifierNotCalledIfHeadersIncomplete(t, tt.headers, verifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

// verifierNotCalledIfHeadersIncomplete ヘッダー欠落時に検証APIが呼ばれないことを確認する
func verifierNotCalledIfHeadersIncomplete(t *testing.T, headers webhook.SignatureHeaders, verifier *MockSignatureVerifier) {
	t.Helper()
	if !headers.Complete() {
		verifier.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestOrderApprovedHandler(t *testing.T) {
	tests := []struct {
		name      string
		resource  string
		setupMock func(*MockOrderCapturer)
		wantError bool
	}{
		{
			name:     "正常系: 即時売上の注文は承認を観測したら売上を確定する",
			resource: `{"id": "ORDER-1", "intent": "CAPTURE"}`,
			setupMock: func(capturer *MockOrderCapturer) {
				capturer.On("CaptureOrder", mock.Anything, "tenant-1", "ORDER-1").
					Return(&checkout.OrderActionResponse{OrderID: "ORDER-1", Status: "captured", CaptureID: "CAP-1"}, nil)
			},
		},
		{
			name:      "正常系: オーソリのみの注文は売上を確定しない",
			resource:  `{"id": "ORDER-1", "intent": "AUTHORIZE"}`,
			setupMock: func(capturer *MockOrderCapturer) {},
		},
		{
			name:      "異常系: 注文IDがない",
			resource:  `{"intent": "CAPTURE"}`,
			setupMock: func(capturer *MockOrderCapturer) {},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capturer := new(MockOrderCapturer)
			tt.setupMock(capturer)

			handler := NewOrderApprovedHandler(capturer, testLogger())

			event := &webhook.Event{
				ID:        "WH-EVT-1",
				EventType: EventTypeOrderApproved,
				Resource:  []byte(tt.resource),
			}

			err := handler(context.Background(), "tenant-1", event)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			capturer.AssertExpectations(t)
		})
	}
}
