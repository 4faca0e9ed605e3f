package webhook

import "errors"

var (
	// ErrMissingSignatureHeaders 署名ヘッダーが欠けている
	ErrMissingSignatureHeaders = errors.New("missing signature headers")
	// ErrSignatureVerificationFailed 署名検証に失敗した（フェイルクローズ）
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	// ErrVerificationUnavailable 検証APIが利用できない（プロセッサの再送を促す）
	ErrVerificationUnavailable = errors.New("signature verification unavailable")
	// ErrUnparseableBody イベント本体をパースできない
	ErrUnparseableBody = errors.New("unparseable webhook body")
	// ErrEventAlreadyProcessed 同一transmission idのイベントを処理済み
	ErrEventAlreadyProcessed = errors.New("webhook event already processed")
)
