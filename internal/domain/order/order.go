package order

import (
	"strings"

	"paygate-server/internal/domain/money"
)

const (
	// SoftDescriptorMaxLength ソフトデスクリプタの最大長
	SoftDescriptorMaxLength = 22

	// ShippingPreferenceNoShipping 配送先なし（デジタル商品）
	ShippingPreferenceNoShipping = "NO_SHIPPING"
	// ShippingPreferenceProvided 指定済みの配送先を使用
	ShippingPreferenceProvided = "SET_PROVIDED_ADDRESS"
	// ShippingPreferenceFromFile プロセッサ登録済みの配送先を使用
	ShippingPreferenceFromFile = "GET_FROM_FILE"
)

// LineItem 注文の明細行
type LineItem struct {
	Name       string
	Quantity   int
	UnitAmount money.Amount
}

// Breakdown 注文金額の内訳
type Breakdown struct {
	ItemTotal money.Amount
	Shipping  money.Amount
	TaxTotal  money.Amount
}

// Total 内訳の合計金額を返す
func (b Breakdown) Total() (money.Amount, error) {
	sum, err := b.ItemTotal.Add(b.Shipping)
	if err != nil {
		return money.Amount{}, err
	}
	return sum.Add(b.TaxTotal)
}

// Matches 内訳の合計が総額と許容誤差内で一致するかどうかを返す
// 一致しない場合、内訳と明細行は両方とも送信しない（注文自体の拒否を避けるため）
func (b Breakdown) Matches(total money.Amount) bool {
	sum, err := b.Total()
	if err != nil {
		return false
	}
	return sum.WithinTolerance(total)
}

// Payer 買い手情報
type Payer struct {
	Email     string
	GivenName string
	Surname   string
}

// Address 住所
type Address struct {
	Line1       string
	Line2       string
	City        string
	State       string
	PostalCode  string
	CountryCode string
}

// Shipping 配送先情報
type Shipping struct {
	RecipientName string
	Address       *Address
}

// NormalizeSoftDescriptor ソフトデスクリプタを正規化する（トリムして22文字に切り詰め、空なら空のまま）
func NormalizeSoftDescriptor(s string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > SoftDescriptorMaxLength {
		s = string(runes[:SoftDescriptorMaxLength])
	}
	return s
}

// DetermineShippingPreference 配送設定を決定する
// 配送の必要がなく住所も送料もない場合はNO_SHIPPING、住所が分かる場合はSET_PROVIDED_ADDRESS、
// それ以外はGET_FROM_FILE
func DetermineShippingPreference(requiresShipping bool, shipping *Shipping, shippingCost money.Amount) string {
	hasAddress := shipping != nil && shipping.Address != nil
	if !requiresShipping && !hasAddress && shippingCost.IsZero() {
		return ShippingPreferenceNoShipping
	}
	if hasAddress {
		return ShippingPreferenceProvided
	}
	return ShippingPreferenceFromFile
}
