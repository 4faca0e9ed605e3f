package merchant

import (
	"context"
)

// ConfigRepository テナント設定リポジトリインターフェース
type ConfigRepository interface {
	// FindByTenantID テナントIDで設定を取得
	FindByTenantID(ctx context.Context, tenantID string) (*Config, error)
}
