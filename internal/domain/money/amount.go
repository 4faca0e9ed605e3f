package money

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxMinorUnits 最大金額（マイナー単位、10兆）
	MaxMinorUnits = 10_000_000_000_000
	// BreakdownTolerance 内訳合計と総額の許容誤差（マイナー単位）
	BreakdownTolerance = 2
)

var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// zeroDecimalCurrencies 小数点を持たない通貨
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"HUF": {},
	"TWD": {},
}

// Amount 金額を表す値オブジェクト（マイナー単位の整数で保持）
type Amount struct {
	currency   string
	minorUnits int64
}

// NewAmount 新しいAmountを作成
func NewAmount(currency string, minorUnits int64) (Amount, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyCodeRegex.MatchString(currency) {
		return Amount{}, ErrInvalidCurrency
	}
	if minorUnits < 0 {
		return Amount{}, ErrNegativeAmount
	}
	if minorUnits > MaxMinorUnits {
		return Amount{}, ErrAmountTooLarge
	}
	return Amount{currency: currency, minorUnits: minorUnits}, nil
}

// Currency 通貨コードを返す
func (a Amount) Currency() string {
	return a.currency
}

// MinorUnits マイナー単位の金額を返す
func (a Amount) MinorUnits() int64 {
	return a.minorUnits
}

// IsZero ゼロ金額かどうかを返す
func (a Amount) IsZero() bool {
	return a.minorUnits == 0
}

// Exponent 通貨の小数点桁数を返す
func (a Amount) Exponent() int {
	if _, ok := zeroDecimalCurrencies[a.currency]; ok {
		return 0
	}
	return 2
}

// Value プロセッサ向けの文字列表現を返す（例: "42.00"、JPYなら"4200"）
func (a Amount) Value() string {
	exp := a.Exponent()
	if exp == 0 {
		return fmt.Sprintf("%d", a.minorUnits)
	}
	divisor := int64(100)
	return fmt.Sprintf("%d.%02d", a.minorUnits/divisor, a.minorUnits%divisor)
}

// Add 同一通貨の金額を加算した新しいAmountを返す
func (a Amount) Add(other Amount) (Amount, error) {
	if a.currency != other.currency {
		return Amount{}, ErrCurrencyMismatch
	}
	return NewAmount(a.currency, a.minorUnits+other.minorUnits)
}

// PercentOf 総額に対する割合（パーセント）の金額を返す（端数切り捨て）
func (a Amount) PercentOf(percent float64) (Amount, error) {
	if percent < 0 || percent > 100 {
		return Amount{}, ErrInvalidPercentage
	}
	fee := int64(float64(a.minorUnits) * percent / 100)
	return NewAmount(a.currency, fee)
}

// WithinTolerance 他の金額との差が許容誤差内かどうかを返す
func (a Amount) WithinTolerance(other Amount) bool {
	if a.currency != other.currency {
		return false
	}
	diff := a.minorUnits - other.minorUnits
	if diff < 0 {
		diff = -diff
	}
	return diff <= BreakdownTolerance
}

// MustNewAmount テスト用ヘルパー: NewAmountを呼び出し、エラーが発生した場合はpanicする
func MustNewAmount(currency string, minorUnits int64) Amount {
	a, err := NewAmount(currency, minorUnits)
	if err != nil {
		panic(err)
	}
	return a
}
