package webhook

import (
	"context"
)

// ProcessedEventRepository 処理済みWebhookイベントの台帳インターフェース
// プロセッサはat-least-once配送のため、transmission idで再配送を検出する
type ProcessedEventRepository interface {
	// MarkProcessed transmission idを処理済みとして記録
	// 既に記録済みの場合はErrEventAlreadyProcessedを返す
	MarkProcessed(ctx context.Context, transmissionID, eventID, eventType string) error
}
