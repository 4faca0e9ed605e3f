package order

// ResultStatus 注文結果のステータスを表す値オブジェクト
type ResultStatus string

const (
	ResultStatusCreated        ResultStatus = "created"         // 作成済み
	ResultStatusActionRequired ResultStatus = "action_required" // 買い手の追加操作待ち
	ResultStatusCaptured       ResultStatus = "captured"        // 売上/オーソリ完了
	ResultStatusFailed         ResultStatus = "failed"          // 失敗（終端）
)

// String 文字列表現を返す
func (s ResultStatus) String() string {
	return string(s)
}

// IsTerminal 終端状態かどうかを返す
func (s ResultStatus) IsTerminal() bool {
	return s == ResultStatusCaptured || s == ResultStatusFailed
}

// Result 注文処理の結果
type Result struct {
	OrderID     string
	Status      ResultStatus
	ApprovalURL string // ActionRequiredの場合の買い手承認URL
	FailureCode string // Failedの場合の安定したエラーコード
}

// InterpretProcessorStatus プロセッサのステータス文字列を結果ステータスに解釈する
// PAYER_ACTION_REQUIREDとCREATEDは買い手の追加操作待ち、それ以外の成功は完了扱い
func InterpretProcessorStatus(status string) ResultStatus {
	switch status {
	case "PAYER_ACTION_REQUIRED", "CREATED":
		return ResultStatusActionRequired
	default:
		return ResultStatusCaptured
	}
}
