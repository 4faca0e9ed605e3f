package vault

import (
	"context"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/paymentmethod"
)

// CreateSetupTokenInput セットアップトークン作成の入力
type CreateSetupTokenInput struct {
	CustomerID         string
	Kind               paymentmethod.Kind
	VerificationMethod string // カードのSCA検証方式（SCA_WHEN_REQUIREDなど）
	ReturnURL          string
	CancelURL          string
	UsageType          string // paypal/venmoのusage_type（MERCHANTなど）
}

// TokenVault プロセッサのVault操作インターフェース
type TokenVault interface {
	// CreateSetupToken セットアップトークンを作成
	CreateSetupToken(ctx context.Context, cfg *merchant.Config, input CreateSetupTokenInput) (*SetupToken, error)

	// GetSetupToken セットアップトークンを取得
	GetSetupToken(ctx context.Context, cfg *merchant.Config, setupTokenID string) (*SetupToken, error)

	// CreatePaymentToken 承認済みセットアップトークンから決済トークンを発行
	// 未承認の場合はErrSetupTokenNotApprovedを返す
	CreatePaymentToken(ctx context.Context, cfg *merchant.Config, setupTokenID string) (*PaymentToken, error)

	// ListPaymentTokens Vault顧客IDに紐づく決済トークンを一覧取得
	ListPaymentTokens(ctx context.Context, cfg *merchant.Config, customerID string) ([]*PaymentToken, error)

	// DeletePaymentToken 決済トークンを削除
	DeletePaymentToken(ctx context.Context, cfg *merchant.Config, tokenID string) error
}
