package paymentmethod

import (
	"fmt"
)

// Kind 決済手段の種別を表す値オブジェクト
type Kind string

const (
	KindCard     Kind = "card"      // カード
	KindPayPal   Kind = "paypal"    // PayPalウォレット
	KindVenmo    Kind = "venmo"     // Venmo
	KindApplePay Kind = "apple_pay" // Apple Pay
)

// NewKind 新しいKindを作成
func NewKind(s string) (Kind, error) {
	switch s {
	case "card", "paypal", "venmo", "apple_pay":
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidKind, s)
	}
}

// String 文字列表現を返す
func (k Kind) String() string {
	return string(k)
}

// Valid 有効な決済手段種別かどうかを返す
func (k Kind) Valid() bool {
	switch k {
	case KindCard, KindPayPal, KindVenmo, KindApplePay:
		return true
	default:
		return false
	}
}

// SupportsStoredCredential stored_credentialを付与できる種別かどうかを返す
// PayPalウォレットとVenmoはvault idのみで同意が示されるため対象外
func (k Kind) SupportsStoredCredential() bool {
	switch k {
	case KindCard, KindApplePay:
		return true
	case KindPayPal, KindVenmo:
		return false
	default:
		return false
	}
}

// RequiresExperienceContext セットアップトークンにexperience_contextが必要な種別かどうかを返す
func (k Kind) RequiresExperienceContext() bool {
	switch k {
	case KindPayPal, KindVenmo:
		return true
	case KindCard, KindApplePay:
		return false
	default:
		return false
	}
}
