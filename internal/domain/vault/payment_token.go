package vault

import (
	"paygate-server/internal/domain/paymentmethod"
)

// CardDisplayDetails 保存済みカードの表示用情報
type CardDisplayDetails struct {
	Brand      string
	LastDigits string
	ExpiryDate string
}

// PaymentToken 保存済み決済手段への永続的な参照（vault id）
// 一度発行されると再利用可能で、削除は買い手またはプロセッサ側から行われる
type PaymentToken struct {
	id         string
	customerID string
	kind       paymentmethod.Kind
	display    *CardDisplayDetails
}

// NewPaymentToken 新しいPaymentTokenを作成
func NewPaymentToken(id, customerID string, kind paymentmethod.Kind, display *CardDisplayDetails) (*PaymentToken, error) {
	if id == "" {
		return nil, ErrInvalidPaymentTokenID
	}
	if !kind.Valid() {
		return nil, ErrInvalidPaymentMethodKind
	}
	return &PaymentToken{
		id:         id,
		customerID: customerID,
		kind:       kind,
		display:    display,
	}, nil
}

// ID 決済トークンIDを返す
func (t *PaymentToken) ID() string {
	return t.id
}

// CustomerID Vault顧客IDを返す
func (t *PaymentToken) CustomerID() string {
	return t.customerID
}

// Kind 決済手段種別を返す
func (t *PaymentToken) Kind() paymentmethod.Kind {
	return t.kind
}

// DisplayDetails 表示用情報を返す（カード以外はnil）
func (t *PaymentToken) DisplayDetails() *CardDisplayDetails {
	return t.display
}
