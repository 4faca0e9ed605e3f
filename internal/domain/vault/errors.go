package vault

import "errors"

var (
	// ErrInvalidTenantID テナントIDが無効
	ErrInvalidTenantID = errors.New("invalid tenant id")
	// ErrInvalidPlatformUserID プラットフォームのユーザーIDが無効
	ErrInvalidPlatformUserID = errors.New("invalid platform user id")
	// ErrInvalidSetupTokenID セットアップトークンIDが無効
	ErrInvalidSetupTokenID = errors.New("invalid setup token id")
	// ErrInvalidPaymentTokenID 決済トークンIDが無効
	ErrInvalidPaymentTokenID = errors.New("invalid payment token id")
	// ErrInvalidPaymentMethodKind 決済手段種別が無効
	ErrInvalidPaymentMethodKind = errors.New("invalid payment method kind")
	// ErrMappingNotFound 顧客マッピングが見つからない
	ErrMappingNotFound = errors.New("vault customer mapping not found")
	// ErrMappingAlreadyExists 顧客マッピングが既に存在する
	ErrMappingAlreadyExists = errors.New("vault customer mapping already exists")
	// ErrBuyerNotIdentified 買い手が認証されていない（Vault登録には認証済みユーザーが必要）
	ErrBuyerNotIdentified = errors.New("buyer not identified")
	// ErrSetupTokenNotApproved セットアップトークンが未承認（買い手の再承認が必要）
	ErrSetupTokenNotApproved = errors.New("setup token not approved")
)
