package vaulting

// CreateSetupTokenRequest セットアップトークン作成リクエスト
type CreateSetupTokenRequest struct {
	TenantID       string
	PlatformUserID string
	PaymentMethod  string
	ReturnURL      string
	CancelURL      string
}

// SetupTokenResponse セットアップトークンのレスポンス
type SetupTokenResponse struct {
	ID            string
	Status        string
	PaymentMethod string
	ApprovalURL   string
}

// CardDetails 保存済みカードの表示用情報
type CardDetails struct {
	Brand      string
	LastDigits string
	ExpiryDate string
}

// PaymentTokenResponse 決済トークンのレスポンス
type PaymentTokenResponse struct {
	ID            string
	PaymentMethod string
	Card          *CardDetails
}
