package mysql

import (
	"context"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/webhook"
)

// WebhookEventRepository MySQL実装のProcessedEventRepository
// プロセッサのat-least-once配送に対するtransmission id台帳
type WebhookEventRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewWebhookEventRepository 新しいWebhookEventRepositoryを作成
func NewWebhookEventRepository(db *DB) *WebhookEventRepository {
	return &WebhookEventRepository{
		db:     db,
		tracer: otel.Tracer("webhook-event-repository"),
	}
}

// MarkProcessed transmission idを処理済みとして記録
// 一意制約違反は再配送を意味するためErrEventAlreadyProcessedを返す
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, transmissionID, eventID, eventType string) error {
	ctx, span := r.tracer.Start(ctx, "WebhookEventRepository.MarkProcessed")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transmission_id", transmissionID),
		attribute.String("db.event_type", eventType),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "processed_webhook_events"),
	)

	query := `
		INSERT INTO processed_webhook_events (transmission_id, event_id, event_type)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, transmissionID, eventID, eventType)
	if err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			span.SetStatus(otelcodes.Ok, "event already processed")
			return webhook.ErrEventAlreadyProcessed
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "event marked processed")
	return nil
}
