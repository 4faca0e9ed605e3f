package checkout

// LineItemInput 明細行の入力
type LineItemInput struct {
	Name                string
	Quantity            int
	UnitAmountMinorUnit int64
}

// PayerInput 買い手情報の入力
type PayerInput struct {
	Email     string
	GivenName string
	Surname   string
}

// AddressInput 住所の入力
type AddressInput struct {
	Line1       string
	Line2       string
	City        string
	State       string
	PostalCode  string
	CountryCode string
}

// ShippingInput 配送先の入力
type ShippingInput struct {
	RecipientName string
	Address       *AddressInput
}

// CreateOrderRequest 注文作成リクエスト
type CreateOrderRequest struct {
	TenantID            string
	OrderReference      string // プラットフォーム側の注文参照（Webhook相関に使う）
	Action              string // charge（即時売上）またはauthorize（オーソリのみ）
	Currency            string
	TotalMinorUnits     int64
	ItemTotalMinorUnits int64
	ShippingMinorUnits  int64
	TaxMinorUnits       int64
	LineItems           []LineItemInput
	PaymentMethod       string
	VaultIntent         bool
	ReturnBuyerTokenID  string
	VaultCustomerID     string
	IsMerchantInitiated bool
	HostedCardFields    bool
	Payer               *PayerInput
	Shipping            *ShippingInput
	RequiresShipping    bool
	SoftDescriptor      string
	IdempotencyKey      string
}

// CreateOrderResponse 注文作成レスポンス
type CreateOrderResponse struct {
	OrderID     string
	Status      string
	ApprovalURL string
	FailureCode string
}

// ChargeStoredMethodRequest 保存済み決済手段によるマーチャント起点課金リクエスト
type ChargeStoredMethodRequest struct {
	TenantID        string
	OrderReference  string
	Currency        string
	TotalMinorUnits int64
	PaymentMethod   string
	PaymentTokenID  string
	SoftDescriptor  string
	IdempotencyKey  string
}

// UpdateOrderAmountRequest 注文金額更新リクエスト
type UpdateOrderAmountRequest struct {
	TenantID            string
	OrderID             string
	Currency            string
	TotalMinorUnits     int64
	ItemTotalMinorUnits int64
	ShippingMinorUnits  int64
	TaxMinorUnits       int64
}

// OrderActionResponse キャプチャ・オーソリ確定のレスポンス
type OrderActionResponse struct {
	OrderID   string
	Status    string
	CaptureID string
}
