package paymentmethod

import "errors"

var (
	// ErrInvalidKind 決済手段種別が無効
	ErrInvalidKind = errors.New("invalid payment method kind")
)
