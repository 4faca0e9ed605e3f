package handler

// CreateSetupTokenRequest セットアップトークン作成リクエスト
// @Description セットアップトークン作成リクエスト
type CreateSetupTokenRequest struct {
	PaymentMethod string `json:"payment_method" example:"card"`
	ReturnURL     string `json:"return_url" example:"https://shop.example.com/vault/return"`
	CancelURL     string `json:"cancel_url" example:"https://shop.example.com/vault/cancel"`
}

// SetupTokenResponse セットアップトークンのレスポンス
// @Description セットアップトークンのレスポンス
type SetupTokenResponse struct {
	ID            string `json:"id" example:"5C991763VB880910N"`
	Status        string `json:"status" example:"PAYER_ACTION_REQUIRED"`
	PaymentMethod string `json:"payment_method" example:"card"`
	ApprovalURL   string `json:"approval_url,omitempty"`
}

// MintPaymentTokenRequest 決済トークン発行リクエスト
// @Description 承認済みセットアップトークンから永続的な決済トークンを発行するリクエスト
type MintPaymentTokenRequest struct {
	SetupTokenID string `json:"setup_token_id" example:"5C991763VB880910N"`
}

// CardDetails 保存済みカードの表示用情報
// @Description 保存済みカードの表示用情報
type CardDetails struct {
	Brand      string `json:"brand" example:"VISA"`
	LastDigits string `json:"last_digits" example:"1111"`
	ExpiryDate string `json:"expiry_date" example:"2027-12"`
}

// PaymentTokenResponse 決済トークンのレスポンス
// @Description 決済トークンのレスポンス
type PaymentTokenResponse struct {
	ID            string       `json:"id" example:"8kk8451t"`
	PaymentMethod string       `json:"payment_method" example:"card"`
	Card          *CardDetails `json:"card,omitempty"`
}

// PaymentTokenListResponse 決済トークン一覧のレスポンス
// @Description 決済トークン一覧のレスポンス
type PaymentTokenListResponse struct {
	Tokens []PaymentTokenResponse `json:"tokens"`
}
