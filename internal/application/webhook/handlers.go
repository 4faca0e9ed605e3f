package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"paygate-server/internal/application/checkout"
	"paygate-server/internal/domain/order"
	"paygate-server/internal/domain/webhook"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

// 処理対象のイベント種別
const (
	EventTypeOrderApproved       = "CHECKOUT.ORDER.APPROVED"
	EventTypeCaptureCompleted    = "PAYMENT.CAPTURE.COMPLETED"
	EventTypeCaptureDenied       = "PAYMENT.CAPTURE.DENIED"
	EventTypePaymentTokenDeleted = "VAULT.PAYMENT-TOKEN.DELETED"
)

// OrderCapturer 承認済み注文の売上を確定できるサービス
type OrderCapturer interface {
	CaptureOrder(ctx context.Context, tenantID, orderID string) (*checkout.OrderActionResponse, error)
}

// NewOrderApprovedHandler 買い手承認イベントのハンドラを作成
// 即時売上の注文は承認を観測した時点でサーバー側から売上を確定する
func NewOrderApprovedHandler(capturer OrderCapturer, logger *otelinfra.Logger) EventHandler {
	return func(ctx context.Context, tenantID string, event *webhook.Event) error {
		var resource struct {
			ID     string `json:"id"`
			Intent string `json:"intent"`
		}
		if err := json.Unmarshal(event.Resource, &resource); err != nil {
			return fmt.Errorf("failed to parse approved order resource: %w", err)
		}
		if resource.ID == "" {
			return fmt.Errorf("approved order event has no order id")
		}

		if resource.Intent != order.IntentCapture.String() {
			logger.Info(ctx, "Approved order is authorize-only, awaiting explicit capture", map[string]interface{}{
				"tenant_id": tenantID,
				"order_id":  resource.ID,
			})
			return nil
		}

		result, err := capturer.CaptureOrder(ctx, tenantID, resource.ID)
		if err != nil {
			return fmt.Errorf("failed to capture approved order: %w", err)
		}

		logger.Info(ctx, "Captured approved order", map[string]interface{}{
			"tenant_id":  tenantID,
			"order_id":   resource.ID,
			"capture_id": result.CaptureID,
			"status":     result.Status,
		})
		return nil
	}
}

// NewCaptureCompletedHandler 売上確定イベントのハンドラを作成
func NewCaptureCompletedHandler(logger *otelinfra.Logger) EventHandler {
	return func(ctx context.Context, tenantID string, event *webhook.Event) error {
		var resource struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(event.Resource, &resource); err != nil {
			return fmt.Errorf("failed to parse capture resource: %w", err)
		}

		logger.Info(ctx, "Payment capture completed", map[string]interface{}{
			"tenant_id":       tenantID,
			"capture_id":      resource.ID,
			"order_reference": event.CorrelationID(),
		})
		return nil
	}
}

// NewCaptureDeniedHandler 売上拒否イベントのハンドラを作成
func NewCaptureDeniedHandler(logger *otelinfra.Logger) EventHandler {
	return func(ctx context.Context, tenantID string, event *webhook.Event) error {
		var resource struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Resource, &resource); err != nil {
			return fmt.Errorf("failed to parse denied capture resource: %w", err)
		}

		logger.Warn(ctx, "Payment capture denied", map[string]interface{}{
			"tenant_id":       tenantID,
			"capture_id":      resource.ID,
			"order_reference": event.CorrelationID(),
		})
		return nil
	}
}

// NewPaymentTokenDeletedHandler 決済トークン削除イベントのハンドラを作成
// 削除はプロセッサ側・買い手側からも起こるため、観測してログに残す
func NewPaymentTokenDeletedHandler(logger *otelinfra.Logger) EventHandler {
	return func(ctx context.Context, tenantID string, event *webhook.Event) error {
		var resource struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Resource, &resource); err != nil {
			return fmt.Errorf("failed to parse deleted token resource: %w", err)
		}

		logger.Info(ctx, "Payment token deleted at processor", map[string]interface{}{
			"tenant_id":        tenantID,
			"payment_token_id": resource.ID,
		})
		return nil
	}
}
