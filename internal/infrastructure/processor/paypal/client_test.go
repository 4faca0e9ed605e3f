package paypal

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
	"go.opentelemetry.io/otel"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/processor"
)

// newTestClient テストサーバーに向けたClientを作成する
func newTestClient(baseURL string) *Client {
	return &Client{
		httpClient:        &http.Client{Timeout: 5 * time.Second},
		attributionID:     "TEST-BN-CODE",
		partnerMerchantID: "PARTNER123",
		retryBackoff:      time.Millisecond,
		tracer:            otel.Tracer("test"),
		tokens:            make(map[string]*cachedToken),
		baseURLOverride:   baseURL,
	}
}

func testMerchantConfig() *merchant.Config {
	return merchant.MustNewConfig("tenant-1", "client-abc", "secret-xyz", merchant.EnvironmentSandbox, "M123", "WH-456", 2.5)
}

// serveToken トークンエンドポイントをハンドリングし、残りをnextへ委譲する
func serveToken(tokenCalls *atomic.Int32, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			tokenCalls.Add(1)
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client-abc" || pass != "secret-xyz" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
			return
		}
		next(w, r)
	}
}

func TestClient_AccessToken_Cached(t *testing.T) {
	var tokenCalls atomic.Int32
	server := httptest.NewServer(serveToken(&tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	cfg := testMerchantConfig()

	for i := 0; i < 3; i++ {
		_, _, err := client.doRequest(context.Background(), cfg, http.MethodGet, "/v3/vault/setup-tokens/5C9", nil, "")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), tokenCalls.Load(), "トークンはキャッシュされて1回だけ取得される")
}

func TestClient_AccessToken_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.doRequest(context.Background(), testMerchantConfig(), http.MethodGet, "/v2/checkout/orders/1", nil, "")
	require.Error(t, err)
	assert.True(t, processor.IsAuthentication(err))
}

func TestClient_DoRequest_Headers(t *testing.T) {
	var tokenCalls atomic.Int32
	var gotAuth, gotAttribution, gotAssertion, gotRequestID string
	server := httptest.NewServer(serveToken(&tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAttribution = r.Header.Get("PayPal-Partner-Attribution-Id")
		gotAssertion = r.Header.Get("PayPal-Auth-Assertion")
		gotRequestID = r.Header.Get("PayPal-Request-Id")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.doRequest(context.Background(), testMerchantConfig(), http.MethodPost, "/v2/checkout/orders", struct{}{}, "idem-key-1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "TEST-BN-CODE", gotAttribution)
	assert.NotEmpty(t, gotAssertion, "merchant_idがある場合はアサーションを送る")
	assert.Equal(t, "idem-key-1", gotRequestID)
}

func TestClient_DoRequest_NoAssertionWithoutMerchantID(t *testing.T) {
	var tokenCalls atomic.Int32
	var gotAssertion string
	server := httptest.NewServer(serveToken(&tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		gotAssertion = r.Header.Get("PayPal-Auth-Assertion")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	cfg := merchant.MustNewConfig("tenant-1", "client-abc", "secret-xyz", merchant.EnvironmentSandbox, "", "", 0)

	_, _, err := client.doRequest(context.Background(), cfg, http.MethodGet, "/v2/checkout/orders/1", nil, "")
	require.NoError(t, err)
	assert.Empty(t, gotAssertion)
}

func TestClient_DoRequest_RetriesTransientOnce(t *testing.T) {
	var tokenCalls, apiCalls atomic.Int32
	server := httptest.NewServer(serveToken(&tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.doRequest(context.Background(), testMerchantConfig(), http.MethodPost, "/v2/checkout/orders", struct{}{}, "idem-key-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), apiCalls.Load(), "一時障害は1回だけリトライされる")
}

func TestClient_DoRequest_TransientFailsAfterSecondAttempt(t *testing.T) {
	var tokenCalls, apiCalls atomic.Int32
	server := httptest.NewServer(serveToken(&tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.doRequest(context.Background(), testMerchantConfig(), http.MethodPost, "/v2/checkout/orders", struct{}{}, "idem-key-1")
	require.Error(t, err)
	assert.True(t, processor.IsTransient(err))
	assert.Equal(t, int32(2), apiCalls.Load(), "リトライは1回まで")
}

func TestClient_DoRequest_DoesNotRetryRejection(t *testing.T) {
	var tokenCalls, apiCalls atomic.Int32
	server := httptest.NewServer(serveToken(&tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","message":"some detail"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.doRequest(context.Background(), testMerchantConfig(), http.MethodPost, "/v2/checkout/orders", struct{}{}, "idem-key-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), apiCalls.Load())

	pe := processor.AsError(err)
	require.NotNil(t, pe)
	assert.Equal(t, processor.CategoryValidation, pe.Category)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", pe.Code)
	assert.NotContains(t, pe.Error(), "some detail", "生のボディの内容をエラーに含めない")
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCategory processor.Category
		wantCode     string
	}{
		{
			name:         "正常系: 401は認証エラー",
			status:       http.StatusUnauthorized,
			body:         `{"name":"INVALID_TOKEN"}`,
			wantCategory: processor.CategoryAuthentication,
			wantCode:     "INVALID_TOKEN",
		},
		{
			name:         "正常系: 422はバリデーションエラー",
			status:       http.StatusUnprocessableEntity,
			body:         `{"name":"PAYEE_ACCOUNT_RESTRICTED"}`,
			wantCategory: processor.CategoryValidation,
			wantCode:     "PAYEE_ACCOUNT_RESTRICTED",
		},
		{
			name:         "正常系: 404は拒否",
			status:       http.StatusNotFound,
			body:         `{"name":"RESOURCE_NOT_FOUND"}`,
			wantCategory: processor.CategoryRejected,
			wantCode:     "RESOURCE_NOT_FOUND",
		},
		{
			name:         "正常系: 503は一時障害",
			status:       http.StatusServiceUnavailable,
			body:         ``,
			wantCategory: processor.CategoryTransient,
			wantCode:     "UNKNOWN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.status, []byte(tt.body))
			pe := processor.AsError(err)
			require.NotNil(t, pe)
			assert.Equal(t, tt.wantCategory, pe.Category)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.status, pe.StatusCode)
		})
	}
}

func TestAuthAssertion(t *testing.T) {
	assertion := authAssertion("client-abc", "M123")
	assert.Contains(t, assertion, ".")
	assert.NotContains(t, assertion, "client-abc", "ペイロードはbase64エンコードされる")
}
