package merchant

import "errors"

var (
	// ErrInvalidTenantID テナントIDが無効
	ErrInvalidTenantID = errors.New("invalid tenant id")
	// ErrMissingCredentials プロセッサ認証情報が設定されていない
	ErrMissingCredentials = errors.New("missing processor credentials")
	// ErrInvalidEnvironment 接続環境が無効
	ErrInvalidEnvironment = errors.New("invalid processor environment")
	// ErrInvalidFeePercent 手数料割合が無効
	ErrInvalidFeePercent = errors.New("invalid fee percent")
	// ErrConfigNotFound テナント設定が見つからない
	ErrConfigNotFound = errors.New("merchant config not found")
)
