package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/processor"
	"paygate-server/internal/infrastructure/config"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	// tokenExpiryMargin トークンの有効期限切れをこの時間分早めて扱う
	tokenExpiryMargin = 60 * time.Second
)

// cachedToken テナント認証情報ごとにキャッシュされたアクセストークン
type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// Client プロセッサREST APIのHTTPクライアント
// テナントのclient_idごとにOAuth2トークンをキャッシュし、
// 一時的なネットワーク障害は1回だけリトライする
type Client struct {
	httpClient        *http.Client
	attributionID     string
	partnerMerchantID string
	retryBackoff      time.Duration
	tracer            trace.Tracer

	mu     sync.Mutex
	tokens map[string]*cachedToken

	// baseURLOverride テスト用のエンドポイント差し替え
	baseURLOverride string
}

// NewClient 新しいClientを作成
func NewClient(cfg config.PayPalConfig) *Client {
	return &Client{
		httpClient:        &http.Client{Timeout: cfg.RequestTimeout},
		attributionID:     cfg.PartnerAttributionID,
		partnerMerchantID: cfg.PartnerMerchantID,
		retryBackoff:      cfg.RetryBackoff,
		tracer:            otel.Tracer("paypal-client"),
		tokens:            make(map[string]*cachedToken),
	}
}

// baseURL テナントの環境に対応するAPIエンドポイントを返す
func (c *Client) baseURL(cfg *merchant.Config) string {
	if c.baseURLOverride != "" {
		return c.baseURLOverride
	}
	if cfg.Environment() == merchant.EnvironmentLive {
		return liveBaseURL
	}
	return sandboxBaseURL
}

// accessToken テナントのアクセストークンを取得する
// キャッシュが有効期限内ならそれを返し、期限切れなら取得してから上書きする
// （先に削除しない: 取得に失敗しても古いエントリが残るだけで、誤って未認証にはならない）
func (c *Client) accessToken(ctx context.Context, cfg *merchant.Config) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.tokens[cfg.ClientID()]; ok && time.Now().Before(cached.expiresAt) {
		return cached.accessToken, nil
	}

	token, err := c.fetchToken(ctx, cfg)
	if err != nil {
		return "", err
	}

	c.tokens[cfg.ClientID()] = token
	return token.accessToken, nil
}

// fetchToken OAuth2 client_credentialsフローでトークンを取得する
func (c *Client) fetchToken(ctx context.Context, cfg *merchant.Config) (*cachedToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(cfg)+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(cfg.ClientID(), cfg.ClientSecret())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, processor.NewError(processor.CategoryTransient, "TOKEN_FETCH_FAILED", 0, "failed to reach token endpoint")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, processor.NewError(processor.CategoryTransient, "TOKEN_FETCH_FAILED", 0, "failed to read token response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, processor.NewError(processor.CategoryAuthentication, "INVALID_CLIENT_CREDENTIALS", resp.StatusCode, "token endpoint rejected the credentials")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, processor.NewError(processor.CategoryTransient, "TOKEN_ENDPOINT_UNAVAILABLE", resp.StatusCode, "token endpoint unavailable")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, processor.NewError(processor.CategoryRejected, "TOKEN_FETCH_REJECTED", resp.StatusCode, "token endpoint rejected the request")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, processor.NewError(processor.CategoryTransient, "TOKEN_RESPONSE_MALFORMED", resp.StatusCode, "failed to parse token response")
	}

	return &cachedToken{
		accessToken: tr.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin),
	}, nil
}

// authAssertion プラットフォームがマーチャントに代わって操作するためのアサーションを生成する
func authAssertion(clientID, merchantID string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"iss":%q,"payer_id":%q}`, clientID, merchantID)))
	return header + "." + payload + "."
}

// doRequest 認証済みリクエストを実行し、レスポンスボディとステータスを返す
// 一時的な障害は1回だけリトライする（idempotencyKeyが同一なのでプロセッサ側で重複排除される）
func (c *Client) doRequest(ctx context.Context, cfg *merchant.Config, method, path string, reqBody any, idempotencyKey string) ([]byte, int, error) {
	token, err := c.accessToken(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}

	var payload []byte
	if reqBody != nil {
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	body, status, err := c.attempt(ctx, cfg, method, path, token, payload, idempotencyKey)
	if err != nil && processor.IsTransient(err) {
		select {
		case <-time.After(c.retryBackoff):
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
		body, status, err = c.attempt(ctx, cfg, method, path, token, payload, idempotencyKey)
	}
	return body, status, err
}

// attempt リクエストを1回実行する
func (c *Client) attempt(ctx context.Context, cfg *merchant.Config, method, path, token string, payload []byte, idempotencyKey string) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL(cfg)+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if c.attributionID != "" {
		req.Header.Set("PayPal-Partner-Attribution-Id", c.attributionID)
	}
	if cfg.MerchantID() != "" {
		req.Header.Set("PayPal-Auth-Assertion", authAssertion(cfg.ClientID(), cfg.MerchantID()))
	}
	if idempotencyKey != "" {
		req.Header.Set("PayPal-Request-Id", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, processor.NewError(processor.CategoryTransient, "NETWORK_FAILURE", 0, "failed to reach processor")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, processor.NewError(processor.CategoryTransient, "RESPONSE_READ_FAILURE", resp.StatusCode, "failed to read processor response")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, resp.StatusCode, nil
	}
	return nil, resp.StatusCode, translateError(resp.StatusCode, body)
}

// translateError プロセッサのエラーレスポンスを分類済みエラーに変換する
// 生のボディは保持せず、安定した識別子とステータスのみ残す
func translateError(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	code := er.Name
	if code == "" {
		code = "UNKNOWN"
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return processor.NewError(processor.CategoryAuthentication, code, status, "processor rejected the credentials")
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return processor.NewError(processor.CategoryValidation, code, status, "processor rejected the request payload")
	case status >= http.StatusInternalServerError:
		return processor.NewError(processor.CategoryTransient, code, status, "processor unavailable")
	default:
		return processor.NewError(processor.CategoryRejected, code, status, "processor rejected the request")
	}
}
