package vault

import (
	"fmt"

	"paygate-server/internal/domain/paymentmethod"
)

// SetupTokenStatus セットアップトークンのステータスを表す値オブジェクト
type SetupTokenStatus string

const (
	SetupTokenStatusCreated   SetupTokenStatus = "CREATED"   // 作成済み（買い手の承認待ち）
	SetupTokenStatusApproved  SetupTokenStatus = "APPROVED"  // 買い手が承認済み
	SetupTokenStatusCancelled SetupTokenStatus = "CANCELLED" // キャンセル済み
)

// NewSetupTokenStatus 新しいSetupTokenStatusを作成
func NewSetupTokenStatus(s string) (SetupTokenStatus, error) {
	switch s {
	case "CREATED", "APPROVED", "CANCELLED":
		return SetupTokenStatus(s), nil
	default:
		return "", fmt.Errorf("invalid setup token status: %s", s)
	}
}

// String 文字列表現を返す
func (s SetupTokenStatus) String() string {
	return string(s)
}

// IsApproved 承認済みかどうかを返す
func (s SetupTokenStatus) IsApproved() bool {
	return s == SetupTokenStatusApproved
}

// SetupToken Vault登録の未確定な意思を表すトークン
// ステータス遷移はプロセッサ側の買い手操作によってのみ起こる（本システムは観測するのみ）
type SetupToken struct {
	id          string
	status      SetupTokenStatus
	kind        paymentmethod.Kind
	customerID  string
	approvalURL string
}

// NewSetupToken 新しいSetupTokenを作成
func NewSetupToken(id string, status SetupTokenStatus, kind paymentmethod.Kind, customerID, approvalURL string) (*SetupToken, error) {
	if id == "" {
		return nil, ErrInvalidSetupTokenID
	}
	if !kind.Valid() {
		return nil, ErrInvalidPaymentMethodKind
	}
	return &SetupToken{
		id:          id,
		status:      status,
		kind:        kind,
		customerID:  customerID,
		approvalURL: approvalURL,
	}, nil
}

// ID セットアップトークンIDを返す
func (t *SetupToken) ID() string {
	return t.id
}

// Status ステータスを返す
func (t *SetupToken) Status() SetupTokenStatus {
	return t.status
}

// Kind 決済手段種別を返す
func (t *SetupToken) Kind() paymentmethod.Kind {
	return t.kind
}

// CustomerID Vault顧客IDを返す
func (t *SetupToken) CustomerID() string {
	return t.customerID
}

// ApprovalURL 買い手の承認用URLを返す（承認不要な場合は空）
func (t *SetupToken) ApprovalURL() string {
	return t.approvalURL
}

// CanMint 決済トークンを発行できる状態かどうかを返す
func (t *SetupToken) CanMint() bool {
	return t.status.IsApproved()
}
