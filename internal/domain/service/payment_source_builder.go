package service

import (
	"paygate-server/internal/domain/order"
	"paygate-server/internal/domain/paymentmethod"
)

// PaymentSourceBuilder ペイメントソース構築ドメインサービス
type PaymentSourceBuilder struct{}

// NewPaymentSourceBuilder 新しいPaymentSourceBuilderを作成
func NewPaymentSourceBuilder() *PaymentSourceBuilder {
	return &PaymentSourceBuilder{}
}

// BuildSourceInput ペイメントソース構築の入力
type BuildSourceInput struct {
	Kind                paymentmethod.Kind
	VaultIntent         bool   // 決済と同時にVaultへ保存する意思
	ReturnBuyerTokenID  string // リピーターの保存済みトークンID（vault id）
	VaultCustomerID     string // テナント内のVault顧客ID
	IsMerchantInitiated bool   // マーチャント起点の取引（買い手不在）
	HostedCardFields    bool   // ホステッドカードフィールドでカードを後付けするフロー
}

// Build 入力から高々1ブランチのペイメントソースを構築する
// ブランチが1つも埋まらない場合はnilを返す（paymentSourceを省略し、
// プロセッサ側で汎用の注文として扱わせる）
func (b *PaymentSourceBuilder) Build(input BuildSourceInput) (*order.PaymentSource, error) {
	if !input.Kind.Valid() {
		return nil, paymentmethod.ErrInvalidKind
	}

	source := &order.PaymentSource{}

	switch {
	case input.ReturnBuyerTokenID != "":
		// リピーター: 保存済みトークンで該当種別のブランチのみを埋める
		branch := &order.SourceBranch{VaultID: input.ReturnBuyerTokenID}
		if input.IsMerchantInitiated && input.Kind.SupportsStoredCredential() {
			branch.StoredCredential = order.NewMerchantStoredCredential()
		}
		source.SetBranch(input.Kind, branch)

	case input.VaultIntent && input.VaultCustomerID != "":
		// 購入時保存: 選択した種別にVault属性を付与する
		// ホステッドカードフィールドの場合、カードブランチには付与しない
		// （Vault登録はクライアント生成のユーザートークンが上流で担い、
		// 顧客マッピングは後続のトークン発行のためにだけ存在する）
		if input.Kind == paymentmethod.KindCard && input.HostedCardFields {
			break
		}
		source.SetBranch(input.Kind, &order.SourceBranch{
			StoreInVault: order.StoreInVaultOnSuccess,
			CustomerID:   input.VaultCustomerID,
		})
	}

	// 選択種別以外のブランチを必ず取り除く
	// 複数ブランチを含むリクエストはプロセッサに422で拒否される
	source.StripExcept(input.Kind)

	if source.IsEmpty() {
		return nil, nil
	}
	return source, nil
}
