package webhook

import (
	"encoding/json"
	"time"
)

// Event プロセッサから届いたWebhookイベント
// 検証後に一度だけ消費される一時的なデータであり、本体は永続化しない
type Event struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime time.Time       `json:"create_time"`
	Resource   json.RawMessage `json:"resource"`
}

// SignatureHeaders プロセッサの署名検証用ヘッダー一式
type SignatureHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

// Complete 5つのヘッダーがすべて揃っているかどうかを返す
// 1つでも欠けている場合はプロセッサへの問い合わせを行わず即時拒否する
func (h SignatureHeaders) Complete() bool {
	return h.TransmissionID != "" &&
		h.TransmissionTime != "" &&
		h.TransmissionSig != "" &&
		h.CertURL != "" &&
		h.AuthAlgo != ""
}

// CorrelationID イベントのresourceから注文作成時に付与したcustom_idを取り出す
// 本システム外で発生したイベント（ダッシュボード起点の返金など）では空になりうる
func (e *Event) CorrelationID() string {
	var resource struct {
		CustomID string `json:"custom_id"`
	}
	if err := json.Unmarshal(e.Resource, &resource); err != nil {
		return ""
	}
	return resource.CustomID
}
