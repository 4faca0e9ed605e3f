package vault

import (
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

// CustomerMapping プラットフォームのユーザーIDとプロセッサ側のVault顧客IDの対応
// (tenantId, platformUserId) ごとに1件、作成後は不変
type CustomerMapping struct {
	tenantID            string
	platformUserID      string
	processorCustomerID string
	createdAt           time.Time
}

// NewCustomerMapping 新しいCustomerMappingを作成
// プロセッサ顧客IDはプラットフォームのユーザーIDをそのまま使用する
func NewCustomerMapping(tenantID, platformUserID string) (*CustomerMapping, error) {
	if !idRegex.MatchString(tenantID) {
		return nil, ErrInvalidTenantID
	}
	if !idRegex.MatchString(platformUserID) {
		return nil, ErrInvalidPlatformUserID
	}
	return &CustomerMapping{
		tenantID:            tenantID,
		platformUserID:      platformUserID,
		processorCustomerID: platformUserID,
		createdAt:           time.Now(),
	}, nil
}

// ReconstructCustomerMapping 永続化層からCustomerMappingを復元
func ReconstructCustomerMapping(tenantID, platformUserID, processorCustomerID string, createdAt time.Time) *CustomerMapping {
	return &CustomerMapping{
		tenantID:            tenantID,
		platformUserID:      platformUserID,
		processorCustomerID: processorCustomerID,
		createdAt:           createdAt,
	}
}

// TenantID テナントIDを返す
func (m *CustomerMapping) TenantID() string {
	return m.tenantID
}

// PlatformUserID プラットフォームのユーザーIDを返す
func (m *CustomerMapping) PlatformUserID() string {
	return m.platformUserID
}

// ProcessorCustomerID プロセッサ側のVault顧客IDを返す
func (m *CustomerMapping) ProcessorCustomerID() string {
	return m.processorCustomerID
}

// CreatedAt 作成日時を返す
func (m *CustomerMapping) CreatedAt() time.Time {
	return m.createdAt
}

// MustNewCustomerMapping テスト用ヘルパー: NewCustomerMappingを呼び出し、エラーが発生した場合はpanicする
func MustNewCustomerMapping(tenantID, platformUserID string) *CustomerMapping {
	m, err := NewCustomerMapping(tenantID, platformUserID)
	if err != nil {
		panic(err)
	}
	return m
}
