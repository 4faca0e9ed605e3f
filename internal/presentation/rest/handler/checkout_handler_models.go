package handler

// LineItem 注文の明細行
// @Description 注文の明細行
type LineItem struct {
	Name       string `json:"name" example:"Tシャツ"`
	Quantity   int    `json:"quantity" example:"2"`
	UnitAmount string `json:"unit_amount" example:"2500"`
}

// Payer 買い手情報
// @Description 買い手情報
type Payer struct {
	Email     string `json:"email" example:"buyer@example.com"`
	GivenName string `json:"given_name" example:"Taro"`
	Surname   string `json:"surname" example:"Yamada"`
}

// Address 住所
// @Description 住所
type Address struct {
	Line1       string `json:"line1" example:"1-2-3 Shibuya"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city" example:"Shibuya-ku"`
	State       string `json:"state" example:"Tokyo"`
	PostalCode  string `json:"postal_code" example:"150-0002"`
	CountryCode string `json:"country_code" example:"JP"`
}

// Shipping 配送先
// @Description 配送先
type Shipping struct {
	RecipientName string   `json:"recipient_name" example:"Taro Yamada"`
	Address       *Address `json:"address,omitempty"`
}

// CreateOrderRequest 注文作成リクエスト
// @Description 注文作成リクエスト
type CreateOrderRequest struct {
	OrderReference    string     `json:"order_reference" example:"order-20250601-001"`
	Action            string     `json:"action" example:"charge"`
	Currency          string     `json:"currency" example:"JPY"`
	Total             string     `json:"total" example:"5500"`
	ItemTotal         string     `json:"item_total,omitempty" example:"5000"`
	ShippingTotal     string     `json:"shipping_total,omitempty" example:"500"`
	TaxTotal          string     `json:"tax_total,omitempty" example:"0"`
	LineItems         []LineItem `json:"line_items,omitempty"`
	PaymentMethod     string     `json:"payment_method" example:"paypal"`
	Vault             bool       `json:"vault,omitempty"`
	PaymentTokenID    string     `json:"payment_token_id,omitempty" example:"8kk8451t"`
	MerchantInitiated bool       `json:"merchant_initiated,omitempty"`
	HostedFields      bool       `json:"hosted_fields,omitempty"`
	Payer             *Payer     `json:"payer,omitempty"`
	Shipping          *Shipping  `json:"shipping,omitempty"`
	RequiresShipping  bool       `json:"requires_shipping,omitempty"`
	SoftDescriptor    string     `json:"soft_descriptor,omitempty" example:"EXAMPLE SHOP"`
}

// CreateOrderResponse 注文作成レスポンス
// @Description 注文作成レスポンス
type CreateOrderResponse struct {
	OrderID     string `json:"order_id" example:"5O190127TN364715T"`
	Status      string `json:"status" example:"action_required"`
	ApprovalURL string `json:"approval_url,omitempty" example:"https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T"`
	FailureCode string `json:"failure_code,omitempty"`
}

// OrderActionResponse キャプチャ・オーソリ確定レスポンス
// @Description キャプチャ・オーソリ確定レスポンス
type OrderActionResponse struct {
	OrderID   string `json:"order_id" example:"5O190127TN364715T"`
	Status    string `json:"status" example:"captured"`
	CaptureID string `json:"capture_id,omitempty" example:"3C679366HH908993F"`
}

// UpdateOrderAmountRequest 注文金額更新リクエスト
// @Description 注文金額更新リクエスト
type UpdateOrderAmountRequest struct {
	Currency      string `json:"currency" example:"JPY"`
	Total         string `json:"total" example:"6000"`
	ItemTotal     string `json:"item_total,omitempty" example:"5000"`
	ShippingTotal string `json:"shipping_total,omitempty" example:"1000"`
	TaxTotal      string `json:"tax_total,omitempty" example:"0"`
}

// ChargeStoredMethodRequest 保存済み決済手段によるマーチャント起点課金リクエスト
// @Description 保存済み決済手段によるマーチャント起点課金リクエスト
type ChargeStoredMethodRequest struct {
	OrderReference string `json:"order_reference" example:"subscription-202506"`
	Currency       string `json:"currency" example:"JPY"`
	Total          string `json:"total" example:"980"`
	PaymentMethod  string `json:"payment_method" example:"card"`
	PaymentTokenID string `json:"payment_token_id" example:"8kk8451t"`
	SoftDescriptor string `json:"soft_descriptor,omitempty" example:"EXAMPLE SUB"`
}
