package order

import "errors"

var (
	// ErrInvalidLineItem 明細行が無効
	ErrInvalidLineItem = errors.New("invalid line item")
	// ErrMissingPaymentSource ペイメントソースが指定されていない
	ErrMissingPaymentSource = errors.New("missing payment source")
	// ErrOrderNotFound 注文が見つからない
	ErrOrderNotFound = errors.New("order not found")
)
