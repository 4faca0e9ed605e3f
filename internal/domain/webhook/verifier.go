package webhook

import (
	"context"

	"paygate-server/internal/domain/merchant"
)

// SignatureVerifier プロセッサの署名検証インターフェース
type SignatureVerifier interface {
	// VerifySignature イベントの署名を検証する
	// 検証成功以外（verification_statusがSUCCESS以外、HTTPエラー、ネットワーク障害）は
	// すべてエラーとして扱う（フェイルクローズ）
	VerifySignature(ctx context.Context, cfg *merchant.Config, headers SignatureHeaders, rawBody []byte) error
}
