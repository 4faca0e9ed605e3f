package paypal

import "encoding/json"

// tokenResponse OAuth2トークンエンドポイントのレスポンス
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// errorResponse プロセッサのエラーレスポンス
// 安定した識別子（name）のみ取り出し、詳細は転記しない
type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// moneyValue 金額のワイヤ表現
type moneyValue struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// amountBreakdown 注文金額の内訳のワイヤ表現
type amountBreakdown struct {
	ItemTotal *moneyValue `json:"item_total,omitempty"`
	Shipping  *moneyValue `json:"shipping,omitempty"`
	TaxTotal  *moneyValue `json:"tax_total,omitempty"`
}

// amountWithBreakdown 内訳付き金額のワイヤ表現
type amountWithBreakdown struct {
	CurrencyCode string           `json:"currency_code"`
	Value        string           `json:"value"`
	Breakdown    *amountBreakdown `json:"breakdown,omitempty"`
}

// orderItem 明細行のワイヤ表現
type orderItem struct {
	Name       string     `json:"name"`
	Quantity   string     `json:"quantity"`
	UnitAmount moneyValue `json:"unit_amount"`
}

// payerName 買い手氏名のワイヤ表現
type payerName struct {
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

// orderPayer 買い手のワイヤ表現
type orderPayer struct {
	EmailAddress string     `json:"email_address,omitempty"`
	Name         *payerName `json:"name,omitempty"`
}

// shippingName 配送先受取人のワイヤ表現
type shippingName struct {
	FullName string `json:"full_name,omitempty"`
}

// postalAddress 住所のワイヤ表現
type postalAddress struct {
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	AdminArea2   string `json:"admin_area_2,omitempty"`
	AdminArea1   string `json:"admin_area_1,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	CountryCode  string `json:"country_code"`
}

// shippingDetail 配送先のワイヤ表現
type shippingDetail struct {
	Name    *shippingName  `json:"name,omitempty"`
	Address *postalAddress `json:"address,omitempty"`
}

// payee プラットフォーム手数料の受取先のワイヤ表現
type payee struct {
	MerchantID string `json:"merchant_id"`
}

// platformFee プラットフォーム手数料のワイヤ表現
type platformFee struct {
	Amount moneyValue `json:"amount"`
	Payee  payee      `json:"payee"`
}

// paymentInstruction 決済指示のワイヤ表現
type paymentInstruction struct {
	PlatformFees []platformFee `json:"platform_fees,omitempty"`
}

// purchaseUnit 購入単位のワイヤ表現
type purchaseUnit struct {
	Amount             amountWithBreakdown `json:"amount"`
	Items              []orderItem         `json:"items,omitempty"`
	Shipping           *shippingDetail     `json:"shipping,omitempty"`
	PaymentInstruction *paymentInstruction `json:"payment_instruction,omitempty"`
	SoftDescriptor     string              `json:"soft_descriptor,omitempty"`
	CustomID           string              `json:"custom_id,omitempty"`
}

// storedCredential MIT取引のメタデータのワイヤ表現
type storedCredential struct {
	PaymentInitiator string `json:"payment_initiator"`
	PaymentType      string `json:"payment_type"`
	Usage            string `json:"usage"`
}

// vaultInstruction Vault保存指示のワイヤ表現
type vaultInstruction struct {
	StoreInVault string `json:"store_in_vault,omitempty"`
	UsageType    string `json:"usage_type,omitempty"`
}

// customerRef Vault顧客参照のワイヤ表現
type customerRef struct {
	ID string `json:"id"`
}

// sourceAttributes ペイメントソース属性のワイヤ表現
type sourceAttributes struct {
	Vault    *vaultInstruction `json:"vault,omitempty"`
	Customer *customerRef      `json:"customer,omitempty"`
}

// appSwitchPreference PayPalアプリ切り替え設定のワイヤ表現
type appSwitchPreference struct {
	LaunchPayPalApp bool `json:"launch_paypal_app"`
}

// callbackConfig 注文更新コールバック設定のワイヤ表現
type callbackConfig struct {
	CallbackEvents []string `json:"callback_events"`
	CallbackURL    string   `json:"callback_url"`
}

// experienceContext 買い手体験設定のワイヤ表現
type experienceContext struct {
	ShippingPreference        string               `json:"shipping_preference,omitempty"`
	ReturnURL                 string               `json:"return_url,omitempty"`
	CancelURL                 string               `json:"cancel_url,omitempty"`
	AppSwitchPreference       *appSwitchPreference `json:"app_switch_preference,omitempty"`
	OrderUpdateCallbackConfig *callbackConfig      `json:"order_update_callback_config,omitempty"`
}

// sourceBranch 決済手段1種別分のペイメントソースのワイヤ表現
type sourceBranch struct {
	VaultID           string             `json:"vault_id,omitempty"`
	StoredCredential  *storedCredential  `json:"stored_credential,omitempty"`
	Attributes        *sourceAttributes  `json:"attributes,omitempty"`
	ExperienceContext *experienceContext `json:"experience_context,omitempty"`
}

// paymentSource プロセッサに送るペイメントソースのワイヤ表現
// 値が入るブランチは常に高々1つ（複数送ると422で拒否される）
type paymentSource struct {
	Card     *sourceBranch `json:"card,omitempty"`
	PayPal   *sourceBranch `json:"paypal,omitempty"`
	Venmo    *sourceBranch `json:"venmo,omitempty"`
	ApplePay *sourceBranch `json:"apple_pay,omitempty"`
}

// applicationContext 注文全体の買い手体験設定のワイヤ表現
// payment_source側にexperience_contextを置けない種別（カードなど）で使う
type applicationContext struct {
	ShippingPreference string `json:"shipping_preference,omitempty"`
}

// orderRequest 注文作成リクエストのワイヤ表現
type orderRequest struct {
	Intent             string              `json:"intent"`
	PurchaseUnits      []purchaseUnit      `json:"purchase_units"`
	PaymentSource      *paymentSource      `json:"payment_source,omitempty"`
	Payer              *orderPayer         `json:"payer,omitempty"`
	ApplicationContext *applicationContext `json:"application_context,omitempty"`
}

// link HATEOASリンクのワイヤ表現
type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// captureDetail キャプチャ1件のワイヤ表現
type captureDetail struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// unitPayments 購入単位に紐づく決済のワイヤ表現
type unitPayments struct {
	Captures []captureDetail `json:"captures"`
}

// purchaseUnitResult レスポンス側の購入単位のワイヤ表現
type purchaseUnitResult struct {
	Payments *unitPayments `json:"payments,omitempty"`
}

// orderResponse 注文レスポンスのワイヤ表現
type orderResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Links         []link               `json:"links"`
	PurchaseUnits []purchaseUnitResult `json:"purchase_units"`
}

// patchOperation PATCHリクエストの1操作のワイヤ表現
type patchOperation struct {
	Op    string              `json:"op"`
	Path  string              `json:"path"`
	Value amountWithBreakdown `json:"value"`
}

// setupTokenSource セットアップトークンのペイメントソースのワイヤ表現
type setupTokenSource struct {
	Card     *setupTokenBranch `json:"card,omitempty"`
	PayPal   *setupTokenBranch `json:"paypal,omitempty"`
	Venmo    *setupTokenBranch `json:"venmo,omitempty"`
	ApplePay *setupTokenBranch `json:"apple_pay,omitempty"`
}

// setupTokenBranch セットアップトークンの決済手段別設定のワイヤ表現
type setupTokenBranch struct {
	VerificationMethod string             `json:"verification_method,omitempty"`
	UsageType          string             `json:"usage_type,omitempty"`
	ExperienceContext  *experienceContext `json:"experience_context,omitempty"`
}

// setupTokenRequest セットアップトークン作成リクエストのワイヤ表現
type setupTokenRequest struct {
	PaymentSource setupTokenSource `json:"payment_source"`
	Customer      *customerRef     `json:"customer,omitempty"`
}

// cardDetail 保存済みカードのワイヤ表現
type cardDetail struct {
	Brand      string `json:"brand"`
	LastDigits string `json:"last_digits"`
	Expiry     string `json:"expiry"`
}

// tokenSourceResult トークンレスポンスのペイメントソースのワイヤ表現
type tokenSourceResult struct {
	Card     *cardDetail     `json:"card,omitempty"`
	PayPal   json.RawMessage `json:"paypal,omitempty"`
	Venmo    json.RawMessage `json:"venmo,omitempty"`
	ApplePay json.RawMessage `json:"apple_pay,omitempty"`
}

// setupTokenResponse セットアップトークンレスポンスのワイヤ表現
type setupTokenResponse struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Customer      *customerRef      `json:"customer,omitempty"`
	PaymentSource tokenSourceResult `json:"payment_source"`
	Links         []link            `json:"links"`
}

// tokenRef セットアップトークン参照のワイヤ表現
type tokenRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// paymentTokenRequest 決済トークン発行リクエストのワイヤ表現
type paymentTokenRequest struct {
	PaymentSource struct {
		Token tokenRef `json:"token"`
	} `json:"payment_source"`
}

// paymentTokenResponse 決済トークンレスポンスのワイヤ表現
type paymentTokenResponse struct {
	ID            string            `json:"id"`
	Customer      *customerRef      `json:"customer,omitempty"`
	PaymentSource tokenSourceResult `json:"payment_source"`
}

// paymentTokenList 決済トークン一覧レスポンスのワイヤ表現
type paymentTokenList struct {
	PaymentTokens []paymentTokenResponse `json:"payment_tokens"`
}

// verifySignatureRequest 署名検証リクエストのワイヤ表現
type verifySignatureRequest struct {
	TransmissionID   string          `json:"transmission_id"`
	TransmissionTime string          `json:"transmission_time"`
	TransmissionSig  string          `json:"transmission_sig"`
	CertURL          string          `json:"cert_url"`
	AuthAlgo         string          `json:"auth_algo"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// verifySignatureResponse 署名検証レスポンスのワイヤ表現
type verifySignatureResponse struct {
	VerificationStatus string `json:"verification_status"`
}
