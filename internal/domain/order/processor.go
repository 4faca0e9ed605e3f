package order

import (
	"context"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/money"
)

// CreateOrderInput プロセッサへの注文作成入力
type CreateOrderInput struct {
	Intent              Intent
	Amount              money.Amount
	Breakdown           *Breakdown // nilの場合は内訳を送らない
	LineItems           []LineItem // Breakdownと同時にのみ送る
	PaymentSource       *PaymentSource
	Payer               *Payer
	Shipping            *Shipping
	PlatformFee         *money.Amount
	SoftDescriptor      string
	IdempotencyKey      string
	CustomID            string // Webhook相関用の不透明なID
	ShippingPreference  string
	AppSwitchPreference bool
	CallbackURL         string // 配送先・請求先・電話番号変更コールバック
}

// ProcessorOrder プロセッサが返した注文の生の状態
type ProcessorOrder struct {
	ID          string
	Status      string // プロセッサのステータス文字列（CREATED, COMPLETEDなど）
	ApprovalURL string
	CaptureID   string
}

// Processor プロセッサの注文操作インターフェース
type Processor interface {
	// CreateOrder 注文を作成
	CreateOrder(ctx context.Context, cfg *merchant.Config, input CreateOrderInput) (*ProcessorOrder, error)

	// CaptureOrder 承認済み注文の売上を確定
	CaptureOrder(ctx context.Context, cfg *merchant.Config, orderID string) (*ProcessorOrder, error)

	// AuthorizeOrder 承認済み注文のオーソリを確定
	AuthorizeOrder(ctx context.Context, cfg *merchant.Config, orderID string) (*ProcessorOrder, error)

	// UpdateOrderAmount 注文金額を更新（配送先変更コールバックなどで使用）
	UpdateOrderAmount(ctx context.Context, cfg *merchant.Config, orderID string, amount money.Amount, breakdown *Breakdown) error
}
