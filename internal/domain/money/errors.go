package money

import "errors"

var (
	// ErrInvalidCurrency 通貨コードが無効
	ErrInvalidCurrency = errors.New("invalid currency code")
	// ErrNegativeAmount 金額が負
	ErrNegativeAmount = errors.New("negative amount")
	// ErrAmountTooLarge 金額が大きすぎる
	ErrAmountTooLarge = errors.New("amount too large")
	// ErrCurrencyMismatch 通貨が一致しない
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidPercentage 割合が無効
	ErrInvalidPercentage = errors.New("invalid percentage")
)
