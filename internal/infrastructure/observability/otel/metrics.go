package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 注文数
	OrderCount metric.Int64Counter

	// Vault操作数
	VaultOperationCount metric.Int64Counter

	// Webhookイベント数
	WebhookEventCount metric.Int64Counter

	// Webhook拒否数
	WebhookRejectionCount metric.Int64Counter

	// レートリミットによる拒否数
	RateLimitedCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	orderCount, err := meter.Int64Counter(
		"orders_total",
		metric.WithDescription("Total number of processor orders"),
	)
	if err != nil {
		return nil, err
	}

	vaultOperationCount, err := meter.Int64Counter(
		"vault_operations_total",
		metric.WithDescription("Total number of vault operations"),
	)
	if err != nil {
		return nil, err
	}

	webhookEventCount, err := meter.Int64Counter(
		"webhook_events_total",
		metric.WithDescription("Total number of webhook events received"),
	)
	if err != nil {
		return nil, err
	}

	webhookRejectionCount, err := meter.Int64Counter(
		"webhook_rejections_total",
		metric.WithDescription("Total number of rejected webhook deliveries"),
	)
	if err != nil {
		return nil, err
	}

	rateLimitedCount, err := meter.Int64Counter(
		"rate_limited_total",
		metric.WithDescription("Total number of rate limited requests"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		OrderCount:            orderCount,
		VaultOperationCount:   vaultOperationCount,
		WebhookEventCount:     webhookEventCount,
		WebhookRejectionCount: webhookRejectionCount,
		RateLimitedCount:      rateLimitedCount,
		RequestCount:          requestCount,
		ResponseTime:          responseTime,
		ErrorCount:            errorCount,
	}, nil
}

// RecordOrder 注文を記録
func (m *Metrics) RecordOrder(ctx context.Context, intent, status string) {
	m.OrderCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("status", status),
		),
	)
}

// RecordVaultOperation Vault操作を記録
func (m *Metrics) RecordVaultOperation(ctx context.Context, operation, kind string) {
	m.VaultOperationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("payment_method_kind", kind),
		),
	)
}

// RecordWebhookEvent Webhookイベントを記録
func (m *Metrics) RecordWebhookEvent(ctx context.Context, eventType string) {
	m.WebhookEventCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("event_type", eventType),
		),
	)
}

// RecordWebhookRejection Webhook拒否を記録
func (m *Metrics) RecordWebhookRejection(ctx context.Context, reason string) {
	m.WebhookRejectionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("reason", reason),
		),
	)
}

// RecordRateLimited レートリミットによる拒否を記録
func (m *Metrics) RecordRateLimited(ctx context.Context, path string) {
	m.RateLimitedCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("path", path),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
