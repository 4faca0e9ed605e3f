package vault

import (
	"context"
)

// CustomerMappingRepository 顧客マッピングリポジトリインターフェース
type CustomerMappingRepository interface {
	// FindByTenantAndUser テナントIDとユーザーIDで顧客マッピングを取得
	FindByTenantAndUser(ctx context.Context, tenantID, platformUserID string) (*CustomerMapping, error)

	// Create 新しい顧客マッピングを作成（同一キーで既に存在する場合はErrMappingAlreadyExists）
	Create(ctx context.Context, mapping *CustomerMapping) error
}
