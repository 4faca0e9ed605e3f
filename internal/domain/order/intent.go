package order

import (
	"fmt"
)

// Intent 注文のインテントを表す値オブジェクト
type Intent string

const (
	IntentCapture   Intent = "CAPTURE"   // 即時売上
	IntentAuthorize Intent = "AUTHORIZE" // オーソリのみ
)

// NewIntent 新しいIntentを作成
func NewIntent(s string) (Intent, error) {
	switch s {
	case "CAPTURE", "AUTHORIZE":
		return Intent(s), nil
	default:
		return "", fmt.Errorf("invalid order intent: %s", s)
	}
}

// IntentFromAction 要求されたアクションからインテントを決定する
// chargeは即時売上、それ以外はオーソリ
func IntentFromAction(action string) Intent {
	if action == "charge" {
		return IntentCapture
	}
	return IntentAuthorize
}

// String 文字列表現を返す
func (i Intent) String() string {
	return string(i)
}
