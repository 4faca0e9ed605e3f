package merchant

import (
	"time"
)

// Environment プロセッサの接続環境
type Environment string

const (
	EnvironmentSandbox Environment = "sandbox" // サンドボックス
	EnvironmentLive    Environment = "live"    // 本番
)

// Valid 有効な環境かどうかを返す
func (e Environment) Valid() bool {
	return e == EnvironmentSandbox || e == EnvironmentLive
}

// String 文字列表現を返す
func (e Environment) String() string {
	return string(e)
}

// Config テナントごとのプロセッサ接続設定
type Config struct {
	tenantID          string
	clientID          string
	clientSecret      string
	environment       Environment
	merchantID        string
	webhookID         string
	partnerFeePercent float64
	updatedAt         time.Time
}

// NewConfig 新しいConfigを作成
func NewConfig(tenantID, clientID, clientSecret string, environment Environment, merchantID, webhookID string, partnerFeePercent float64) (*Config, error) {
	if tenantID == "" {
		return nil, ErrInvalidTenantID
	}
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if !environment.Valid() {
		return nil, ErrInvalidEnvironment
	}
	if partnerFeePercent < 0 || partnerFeePercent > 100 {
		return nil, ErrInvalidFeePercent
	}
	return &Config{
		tenantID:          tenantID,
		clientID:          clientID,
		clientSecret:      clientSecret,
		environment:       environment,
		merchantID:        merchantID,
		webhookID:         webhookID,
		partnerFeePercent: partnerFeePercent,
		updatedAt:         time.Now(),
	}, nil
}

// ReconstructConfig 永続化層からConfigを復元
func ReconstructConfig(tenantID, clientID, clientSecret string, environment Environment, merchantID, webhookID string, partnerFeePercent float64, updatedAt time.Time) *Config {
	return &Config{
		tenantID:          tenantID,
		clientID:          clientID,
		clientSecret:      clientSecret,
		environment:       environment,
		merchantID:        merchantID,
		webhookID:         webhookID,
		partnerFeePercent: partnerFeePercent,
		updatedAt:         updatedAt,
	}
}

// TenantID テナントIDを返す
func (c *Config) TenantID() string {
	return c.tenantID
}

// ClientID プロセッサのクライアントIDを返す
func (c *Config) ClientID() string {
	return c.clientID
}

// ClientSecret プロセッサのクライアントシークレットを返す
func (c *Config) ClientSecret() string {
	return c.clientSecret
}

// Environment 接続環境を返す
func (c *Config) Environment() Environment {
	return c.environment
}

// MerchantID 接続先マーチャントIDを返す（未接続の場合は空）
func (c *Config) MerchantID() string {
	return c.merchantID
}

// WebhookID 登録済みWebhook IDを返す
func (c *Config) WebhookID() string {
	return c.webhookID
}

// PartnerFeePercent プラットフォーム手数料の割合を返す
func (c *Config) PartnerFeePercent() float64 {
	return c.partnerFeePercent
}

// UpdatedAt 更新日時を返す
func (c *Config) UpdatedAt() time.Time {
	return c.updatedAt
}

// MustNewConfig テスト用ヘルパー: NewConfigを呼び出し、エラーが発生した場合はpanicする
func MustNewConfig(tenantID, clientID, clientSecret string, environment Environment, merchantID, webhookID string, partnerFeePercent float64) *Config {
	c, err := NewConfig(tenantID, clientID, clientSecret, environment, merchantID, webhookID, partnerFeePercent)
	if err != nil {
		panic(err)
	}
	return c
}
