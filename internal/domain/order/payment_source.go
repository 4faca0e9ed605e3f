package order

import (
	"paygate-server/internal/domain/paymentmethod"
)

const (
	// PaymentInitiatorMerchant マーチャント起点の取引
	PaymentInitiatorMerchant = "MERCHANT"
	// PaymentTypeUnscheduled 不定期の取引
	PaymentTypeUnscheduled = "UNSCHEDULED"
	// UsageSubsequent 初回同意後の追加取引
	UsageSubsequent = "SUBSEQUENT"
	// StoreInVaultOnSuccess 決済成功時にVaultへ保存
	StoreInVaultOnSuccess = "ON_SUCCESS"
)

// StoredCredential MIT取引に付与する保存済み決済手段のメタデータ
type StoredCredential struct {
	PaymentInitiator string
	PaymentType      string
	Usage            string
}

// NewMerchantStoredCredential マーチャント起点取引用のStoredCredentialを作成
func NewMerchantStoredCredential() *StoredCredential {
	return &StoredCredential{
		PaymentInitiator: PaymentInitiatorMerchant,
		PaymentType:      PaymentTypeUnscheduled,
		Usage:            UsageSubsequent,
	}
}

// SourceBranch 決済手段1種別分のペイメントソース内容
type SourceBranch struct {
	VaultID          string
	StoredCredential *StoredCredential
	StoreInVault     string // StoreInVaultOnSuccessまたは空
	CustomerID       string // attributes.customer.id
}

// PaymentSource プロセッサに送るペイメントソース記述子
// 不変条件: 送信時に値が入っているブランチは高々1つ
type PaymentSource struct {
	Card     *SourceBranch
	PayPal   *SourceBranch
	Venmo    *SourceBranch
	ApplePay *SourceBranch
}

// Branch 種別に対応するブランチを返す
func (s *PaymentSource) Branch(kind paymentmethod.Kind) *SourceBranch {
	switch kind {
	case paymentmethod.KindCard:
		return s.Card
	case paymentmethod.KindPayPal:
		return s.PayPal
	case paymentmethod.KindVenmo:
		return s.Venmo
	case paymentmethod.KindApplePay:
		return s.ApplePay
	default:
		return nil
	}
}

// SetBranch 種別に対応するブランチを設定する
func (s *PaymentSource) SetBranch(kind paymentmethod.Kind, branch *SourceBranch) {
	switch kind {
	case paymentmethod.KindCard:
		s.Card = branch
	case paymentmethod.KindPayPal:
		s.PayPal = branch
	case paymentmethod.KindVenmo:
		s.Venmo = branch
	case paymentmethod.KindApplePay:
		s.ApplePay = branch
	}
}

// PopulatedKinds 値が入っているブランチの種別を返す
func (s *PaymentSource) PopulatedKinds() []paymentmethod.Kind {
	var kinds []paymentmethod.Kind
	if s.Card != nil {
		kinds = append(kinds, paymentmethod.KindCard)
	}
	if s.PayPal != nil {
		kinds = append(kinds, paymentmethod.KindPayPal)
	}
	if s.Venmo != nil {
		kinds = append(kinds, paymentmethod.KindVenmo)
	}
	if s.ApplePay != nil {
		kinds = append(kinds, paymentmethod.KindApplePay)
	}
	return kinds
}

// IsEmpty すべてのブランチが空かどうかを返す
func (s *PaymentSource) IsEmpty() bool {
	return s.Card == nil && s.PayPal == nil && s.Venmo == nil && s.ApplePay == nil
}

// StripExcept 指定した種別以外のブランチをすべて取り除く
// 複数ブランチを送るとプロセッサに422で拒否されるため、送信前に必ず呼ぶ
func (s *PaymentSource) StripExcept(kind paymentmethod.Kind) {
	if kind != paymentmethod.KindCard {
		s.Card = nil
	}
	if kind != paymentmethod.KindPayPal {
		s.PayPal = nil
	}
	if kind != paymentmethod.KindVenmo {
		s.Venmo = nil
	}
	if kind != paymentmethod.KindApplePay {
		s.ApplePay = nil
	}
}
